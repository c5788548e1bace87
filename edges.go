package craftscore

const (
	edgeThreshold       = 50.0
	strongEdgeThreshold = 150.0
	maxStrongEdgeRatio  = 0.15
	minEdgeMagnitudeVar = 500.0
	minEdgeRatio        = 0.01
	maxFocusMeasure     = 3000.0
	minFocusMeasure     = 50.0
)

// analyzeEdges scores gradient statistics: generators produce either too
// many crisp edges or suspiciously even ones, and focus that is too perfect
// or too soft.
func analyzeEdges(rs *raster) subScore {
	var s subScore

	mag := sobelMagnitude(rs.gray, rs.w, rs.h)
	if len(mag) == 0 {
		return s
	}

	var edges []float64
	strong := 0
	for _, m := range mag {
		if m > edgeThreshold {
			edges = append(edges, m)
		}
		if m > strongEdgeThreshold {
			strong++
		}
	}
	total := float64(len(mag))

	if ratio := float64(strong) / total; ratio > maxStrongEdgeRatio {
		s.add(15, "Abnormally high proportion of strong edges (%.1f%%)", ratio*100)
	}
	if len(edges) > 1 {
		if v := popVariance(edges); v < minEdgeMagnitudeVar {
			s.add(10, "Edge strength unusually consistent (variance %.1f)", v)
		}
	}
	if ratio := float64(len(edges)) / total; ratio < minEdgeRatio {
		s.add(10, "Very few edges detected (%.2f%%)", ratio*100)
	}

	focus := popVariance(laplacian(rs.gray, rs.w, rs.h))
	switch {
	case focus > maxFocusMeasure:
		s.add(10, "Image unusually sharp (focus measure %.0f)", focus)
	case focus < minFocusMeasure:
		s.add(10, "Image unusually blurred (focus measure %.1f)", focus)
	}
	return s
}
