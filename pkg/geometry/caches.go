package geometry

import (
	"bytes"
	"fmt"
	"sync/atomic"

	"github.com/df07/go-scatter/pkg/buffercache"
	"github.com/df07/go-scatter/pkg/config"
	"github.com/df07/go-scatter/pkg/core"
	"github.com/df07/go-scatter/pkg/logger"
	"github.com/olekukonko/tablewriter"
	"go.uber.org/zap"
)

// MeshBufferCaches holds one deduplicating cache per kind of mesh buffer.
// Meshes built against the same caches share identical buffers.
type MeshBufferCaches struct {
	Indices     *buffercache.BufferCache[int32]
	Positions   *buffercache.BufferCache[core.Vec3]
	Normals     *buffercache.BufferCache[core.Vec3]
	UVs         *buffercache.BufferCache[core.Vec2]
	Tangents    *buffercache.BufferCache[core.Vec3]
	FaceIndices *buffercache.BufferCache[int32]

	logger *zap.Logger

	// Bytes released by Clear, per cache, since construction
	freed map[string]int64

	triMeshes, triangles atomic.Int64
	patchMeshes, patches atomic.Int64
}

// NewMeshBufferCaches creates empty caches. A nil logger disables logging.
func NewMeshBufferCaches(cfg config.CacheConfig, l *zap.Logger) *MeshBufferCaches {
	l = logger.OrNop(l)
	opts := func(name string) []buffercache.Option {
		return []buffercache.Option{
			buffercache.WithName(name),
			buffercache.WithLogger(l),
			buffercache.WithVerify(cfg.VerifyContents),
		}
	}
	return &MeshBufferCaches{
		Indices:     buffercache.New[int32](opts("indices")...),
		Positions:   buffercache.New[core.Vec3](opts("positions")...),
		Normals:     buffercache.New[core.Vec3](opts("normals")...),
		UVs:         buffercache.New[core.Vec2](opts("uvs")...),
		Tangents:    buffercache.New[core.Vec3](opts("tangents")...),
		FaceIndices: buffercache.New[int32](opts("face indices")...),
		logger:      l,
		freed:       make(map[string]int64),
	}
}

type cacheView interface {
	Name() string
	Stats() buffercache.Stats
	BytesUsed() int64
	Clear()
}

func (c *MeshBufferCaches) all() []cacheView {
	return []cacheView{c.Indices, c.Positions, c.Normals, c.UVs, c.Tangents, c.FaceIndices}
}

// BytesUsed returns the bytes held across all caches
func (c *MeshBufferCaches) BytesUsed() int64 {
	var total int64
	for _, cache := range c.all() {
		total += cache.BytesUsed()
	}
	return total
}

// Clear empties every cache once scene construction is done and returns the
// number of bytes released. Meshes keep their views into the old buffers.
func (c *MeshBufferCaches) Clear() int64 {
	var total int64
	for _, cache := range c.all() {
		used := cache.BytesUsed()
		c.logger.Debug("freeing mesh buffers", zap.String("cache", cache.Name()), zap.Int64("bytes", used))
		c.freed[cache.Name()] += used
		total += used
		cache.Clear()
	}
	c.logger.Info("mesh buffer caches cleared", zap.Int64("bytes", total))
	return total
}

// Freed returns the bytes released by Clear for the named cache
func (c *MeshBufferCaches) Freed(name string) int64 {
	return c.freed[name]
}

// Stats returns one table row per cache: name, entries, bytes, lookups,
// hits and hit rate
func (c *MeshBufferCaches) Stats() [][]string {
	rows := make([][]string, 0, 6)
	for _, cache := range c.all() {
		s := cache.Stats()
		rows = append(rows, []string{
			cache.Name(),
			fmt.Sprintf("%d", s.Entries),
			fmtBytes(s.BytesUsed),
			fmt.Sprintf("%d", s.Lookups),
			fmt.Sprintf("%d", s.Hits),
			fmt.Sprintf("%02.1f %%", 100*s.HitRate()),
		})
	}
	return rows
}

// StatsTable renders Stats as a text table
func (c *MeshBufferCaches) StatsTable() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Cache", "Entries", "Size", "Lookups", "Hits", "Hit rate"})
	table.AppendBulk(c.Stats())
	table.SetFooter([]string{"Total", "", fmtBytes(c.BytesUsed()), "", "",
		fmt.Sprintf("%d tri meshes / %d patch meshes", c.triMeshes.Load(), c.patchMeshes.Load())})
	table.Render()
	return buf.String()
}

// MeshCounts returns the number of meshes and primitives built against the caches
func (c *MeshBufferCaches) MeshCounts() (triMeshes, triangles, patchMeshes, patches int64) {
	return c.triMeshes.Load(), c.triangles.Load(), c.patchMeshes.Load(), c.patches.Load()
}

func fmtBytes(n int64) string {
	switch {
	case n < 1e3:
		return fmt.Sprintf("%d bytes", n)
	case n < 1e6:
		return fmt.Sprintf("%3.1f kb", float64(n)/1e3)
	default:
		return fmt.Sprintf("%3.1f mb", float64(n)/1e6)
	}
}
