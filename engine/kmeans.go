// Copyright (c) 2025 Civicmesh.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import "math"

type kmeansResult struct {
	k          int
	assignment []int
	centroids  []Point
}

// clusterPoints groups projected participants with k-means, evaluating
// every k in [kMin, kMax] and keeping the one with the best mean
// silhouette. Ties go to the smaller k. Seeding is farthest-point from
// the global mean, so identical input always yields identical clusters -
// no randomness anywhere.
//
// Collapses to a single cluster when fewer than two distinct positions
// exist or when no k produces positive separation.
func clusterPoints(points []Point, kMin, kMax, maxIter int) kmeansResult {
	n := len(points)
	if n == 0 {
		return kmeansResult{k: 0}
	}

	distinct := countDistinct(points)
	if n < 2 || distinct < 2 {
		return singleCluster(points)
	}
	if kMax > distinct {
		kMax = distinct
	}
	if kMin < 2 {
		kMin = 2
	}

	best := kmeansResult{}
	bestScore := 0.0
	for k := kMin; k <= kMax; k++ {
		res := lloyd(points, k, maxIter)
		score := meanSilhouette(points, res.assignment, k)
		// Strict improvement required: equal scores keep the smaller k.
		if best.k == 0 || score > bestScore {
			best = res
			bestScore = score
		}
	}

	if best.k == 0 || bestScore <= 0 {
		return singleCluster(points)
	}
	return best
}

func singleCluster(points []Point) kmeansResult {
	assignment := make([]int, len(points))
	return kmeansResult{
		k:          1,
		assignment: assignment,
		centroids:  []Point{meanPoint(points)},
	}
}

// lloyd runs deterministic k-means: farthest-point seeding followed by
// capped assign/update iterations. The cap bounds pathological inputs -
// the loop exits with a best-effort result instead of spinning.
func lloyd(points []Point, k, maxIter int) kmeansResult {
	centroids := seedCentroids(points, k)
	assignment := make([]int, len(points))

	for iter := 0; iter < maxIter; iter++ {
		changed := false
		for i, p := range points {
			c := nearestCentroid(p, centroids)
			if assignment[i] != c {
				assignment[i] = c
				changed = true
			}
		}
		if iter > 0 && !changed {
			break
		}

		// Recompute centroids; an emptied cluster grabs the point
		// farthest from every remaining centroid.
		counts := make([]int, k)
		sums := make([]Point, k)
		for i, p := range points {
			c := assignment[i]
			counts[c]++
			sums[c][0] += p[0]
			sums[c][1] += p[1]
		}
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				centroids[c] = farthestPoint(points, centroids)
				continue
			}
			centroids[c] = Point{sums[c][0] / float64(counts[c]), sums[c][1] / float64(counts[c])}
		}
	}

	return kmeansResult{k: k, assignment: assignment, centroids: centroids}
}

// seedCentroids picks the first centroid as the point farthest from the
// global mean, then repeatedly adds the point farthest from its nearest
// chosen centroid. Ties resolve to the lowest point index.
func seedCentroids(points []Point, k int) []Point {
	centroids := make([]Point, 0, k)

	mean := meanPoint(points)
	first, bestDist := 0, -1.0
	for i, p := range points {
		if d := dist2(p, mean); d > bestDist {
			first, bestDist = i, d
		}
	}
	centroids = append(centroids, points[first])

	for len(centroids) < k {
		centroids = append(centroids, farthestPoint(points, centroids))
	}
	return centroids
}

// farthestPoint returns the point maximizing the distance to its nearest
// centroid, lowest index on ties.
func farthestPoint(points []Point, centroids []Point) Point {
	best, bestDist := 0, -1.0
	for i, p := range points {
		d := math.Inf(1)
		for _, c := range centroids {
			if dd := dist2(p, c); dd < d {
				d = dd
			}
		}
		if d > bestDist {
			best, bestDist = i, d
		}
	}
	return points[best]
}

func nearestCentroid(p Point, centroids []Point) int {
	best, bestDist := 0, math.Inf(1)
	for c, cent := range centroids {
		if d := dist2(p, cent); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// meanSilhouette scores a clustering in [-1, 1]; higher means tighter,
// better-separated clusters. Singleton clusters score 0 for their point.
func meanSilhouette(points []Point, assignment []int, k int) float64 {
	n := len(points)
	counts := make([]int, k)
	for _, c := range assignment {
		counts[c]++
	}

	total := 0.0
	for i, p := range points {
		own := assignment[i]
		if counts[own] <= 1 {
			continue // contributes 0
		}

		// Mean distance to each cluster.
		sums := make([]float64, k)
		for j, q := range points {
			if j == i {
				continue
			}
			sums[assignment[j]] += math.Sqrt(dist2(p, q))
		}

		a := sums[own] / float64(counts[own]-1)
		b := math.Inf(1)
		for c := 0; c < k; c++ {
			if c == own || counts[c] == 0 {
				continue
			}
			if m := sums[c] / float64(counts[c]); m < b {
				b = m
			}
		}
		if math.IsInf(b, 1) {
			continue
		}

		den := math.Max(a, b)
		if den > 0 {
			total += (b - a) / den
		}
	}
	return total / float64(n)
}

func countDistinct(points []Point) int {
	seen := make(map[Point]bool, len(points))
	for _, p := range points {
		seen[p] = true
	}
	return len(seen)
}

func meanPoint(points []Point) Point {
	var m Point
	if len(points) == 0 {
		return m
	}
	for _, p := range points {
		m[0] += p[0]
		m[1] += p[1]
	}
	m[0] /= float64(len(points))
	m[1] /= float64(len(points))
	return m
}

func dist2(a, b Point) float64 {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	return dx*dx + dy*dy
}
