package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/df07/go-scatter/pkg/core"
	"github.com/df07/go-scatter/pkg/geometry"
	"github.com/df07/go-scatter/pkg/loaders"
	"github.com/df07/go-scatter/pkg/logger"
	"github.com/df07/go-scatter/pkg/sampling"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

// MeshFlags configure the mesh command
var MeshFlags = []cli.Flag{
	cli.IntFlag{
		Name:  "instances, n",
		Value: 1,
		Usage: "number of copies of each mesh to create",
	},
	cli.Float64Flag{
		Name:  "spacing",
		Value: 0,
		Usage: "translate each copy along x by this distance, 0 stacks them so buffers are shared",
	},
	cli.BoolFlag{
		Name:  "triangulate",
		Usage: "split quads into triangles instead of building bilinear patches",
	},
	cli.BoolFlag{
		Name:  "reverse",
		Usage: "reverse the orientation of the meshes",
	},
	cli.StringFlag{
		Name:  "emission",
		Usage: "image whose brightness drives (u,v) sampling of the bilinear patches",
	},
	cli.StringFlag{
		Name:  "out, o",
		Usage: "write the first triangle mesh in render space as binary PLY",
	},
}

// meshSource is one mesh to instantiate: its vertex data and the graphics
// state it was declared with
type meshSource struct {
	name               string
	mesh               *loaders.TriQuadMesh
	renderFromObject   core.Transform
	reverseOrientation bool
	imageDist          *sampling.PiecewiseConstant2D
}

// meshBuilder instantiates mesh sources through one set of buffer caches
type meshBuilder struct {
	caches *geometry.MeshBufferCaches
	log    *zap.Logger
	first  *geometry.TriangleMesh
	bounds core.Bounds3
}

func (b *meshBuilder) add(src meshSource, offset core.Transform, reverse bool) {
	renderFromObject := offset.Compose(src.renderFromObject)
	reverse = reverse != src.reverseOrientation
	m := src.mesh

	if len(m.TriIndices) > 0 {
		mesh := geometry.NewTriangleMesh(b.caches, renderFromObject, reverse,
			m.TriIndices, m.P, m.S, m.N, m.UV, m.TriFaceIndices)
		if b.first == nil {
			b.first = mesh
		}
		b.bounds = b.bounds.Union(mesh.Bounds())
		b.log.Debug("triangle mesh", zap.String("source", src.name), zap.Stringer("mesh", mesh))
	}
	if len(m.QuadIndices) > 0 {
		mesh := geometry.NewBilinearPatchMesh(b.caches, renderFromObject, reverse,
			m.QuadIndices, m.P, m.N, m.UV, m.QuadFaceIndices, src.imageDist)
		b.bounds = b.bounds.Union(mesh.Bounds())
		b.log.Debug("bilinear patch mesh", zap.String("source", src.name), zap.Stringer("mesh", mesh))
	}
}

// loadEmission loads an image and returns its sampling distribution
func loadEmission(path string, log *zap.Logger) (*sampling.PiecewiseConstant2D, error) {
	img, err := loaders.LoadImage(path)
	if err != nil {
		return nil, err
	}
	log.Debug("loaded emission image", zap.String("path", path), zap.Int("width", img.Width), zap.Int("height", img.Height))
	return img.SamplingDistribution(), nil
}

// loadSources reads a PLY file, or every mesh shape of a PBRT scene
func loadSources(path string, imageDist *sampling.PiecewiseConstant2D, log *zap.Logger) ([]meshSource, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".pbrt") {
		m, err := loaders.ReadPLY(path)
		if err != nil {
			return nil, err
		}
		return []meshSource{{name: path, mesh: m, renderFromObject: core.IdentityTransform(), imageDist: imageDist}}, nil
	}

	scene, err := loaders.LoadPBRT(path)
	if err != nil {
		return nil, err
	}
	for kind, n := range scene.Ignored {
		log.Debug("ignored statements", zap.String("path", path), zap.String("type", kind), zap.Int("count", n))
	}

	sources := make([]meshSource, 0, len(scene.Shapes))
	for i := range scene.Shapes {
		shape := &scene.Shapes[i]
		m, err := shape.Mesh(scene.Dir)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: shape %d", path, i)
		}
		dist := imageDist
		if name, ok := shape.GetStringParam("emissionfilename"); ok && shape.Subtype == "bilinearmesh" {
			if !filepath.IsAbs(name) {
				name = filepath.Join(scene.Dir, name)
			}
			if dist, err = loadEmission(name, log); err != nil {
				return nil, err
			}
		}
		sources = append(sources, meshSource{
			name:               fmt.Sprintf("%s#%d", path, i),
			mesh:               m,
			renderFromObject:   shape.RenderFromObject,
			reverseOrientation: shape.ReverseOrientation,
			imageDist:          dist,
		})
	}
	return sources, nil
}

// MeshInfo loads PLY files or PBRT scene descriptions, builds meshes through
// the shared buffer caches and prints how much vertex data was deduplicated.
func MeshInfo(ctx *cli.Context) error {
	cfg, err := setup(ctx)
	if err != nil {
		return err
	}
	defer logger.Sync()
	log := logger.Named("mesh")

	if ctx.NArg() == 0 {
		return errors.New("missing PLY or PBRT file argument")
	}
	instances := ctx.Int("instances")
	if instances < 1 {
		return errors.Errorf("instances must be at least 1, got %d", instances)
	}

	var imageDist *sampling.PiecewiseConstant2D
	if path := ctx.String("emission"); path != "" {
		if imageDist, err = loadEmission(path, log); err != nil {
			return err
		}
	}

	b := &meshBuilder{
		caches: geometry.NewMeshBufferCaches(cfg.Cache, log),
		log:    log,
		bounds: core.EmptyBounds3(),
	}

	for _, path := range ctx.Args() {
		sources, err := loadSources(path, imageDist, log)
		if err != nil {
			return err
		}
		for _, src := range sources {
			if src.mesh.SkippedFaces > 0 {
				log.Warn("skipped faces that are neither triangles nor quads",
					zap.String("source", src.name), zap.Int("faces", src.mesh.SkippedFaces))
			}
			if ctx.Bool("triangulate") {
				src.mesh.ConvertToOnlyTriangles()
			}
			fmt.Fprintf(ctx.App.Writer, "%s: %s\n", src.name, src.mesh)

			for i := 0; i < instances; i++ {
				offset := core.Translate(core.NewVec3(float64(i)*ctx.Float64("spacing"), 0, 0))
				b.add(src, offset, ctx.Bool("reverse"))
			}
		}
	}

	triMeshes, triangles, patchMeshes, patches := b.caches.MeshCounts()
	fmt.Fprintf(ctx.App.Writer, "%d triangle meshes (%d triangles), %d bilinear patch meshes (%d patches)\n",
		triMeshes, triangles, patchMeshes, patches)
	fmt.Fprintf(ctx.App.Writer, "bounds %v\n", b.bounds)
	fmt.Fprint(ctx.App.Writer, b.caches.StatsTable())

	if out := ctx.String("out"); out != "" {
		if b.first == nil {
			return errors.New("no triangle mesh to write")
		}
		if err := b.first.WritePLY(out); err != nil {
			return err
		}
		log.Info("wrote mesh", zap.String("path", out))
	}

	freed := b.caches.Clear()
	log.Info("released mesh buffers", zap.Int64("bytes", freed))
	return nil
}
