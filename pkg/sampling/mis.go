package sampling

// BalanceHeuristic weights a sample from strategy f by its share of the combined density
func BalanceHeuristic(nf int, fPdf float64, ng int, gPdf float64) float64 {
	return float64(nf) * fPdf / (float64(nf)*fPdf + float64(ng)*gPdf)
}

// PowerHeuristic is the balance heuristic with densities squared
func PowerHeuristic(nf int, fPdf float64, ng int, gPdf float64) float64 {
	f, g := float64(nf)*fPdf, float64(ng)*gPdf
	if f*f == 0 && g*g == 0 {
		return 0
	}
	return (f * f) / (f*f + g*g)
}
