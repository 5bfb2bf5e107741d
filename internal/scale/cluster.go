package scale

import (
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/stat"

	"github.com/quantfolio/tapestry/internal/core"
)

// Cluster is one dense group of trades in (duration, return) space. The
// centroid is in original units, not normalized ones, so it is plottable
// directly on the scatter axes.
type Cluster struct {
	CentroidDuration float64
	CentroidReturn   float64
	Size             int
	Trades           []core.TradeRecord
}

// ClusterResult partitions the input: every trade appears in exactly one
// cluster or in Noise.
type ClusterResult struct {
	Clusters []Cluster
	Noise    []core.TradeRecord
}

// ClusteredPoints counts trades assigned to a cluster.
func (r ClusterResult) ClusteredPoints() int {
	n := 0
	for _, c := range r.Clusters {
		n += c.Size
	}
	return n
}

// NoisePoints counts unclustered trades.
func (r ClusterResult) NoisePoints() int {
	return len(r.Noise)
}

const stdEpsilon = 1e-10

// ClusterScatterPoints groups trades with DBSCAN over z-score-normalized
// (duration, return) coordinates. Fewer trades than minSamples skips
// clustering entirely and returns everything as noise.
func (m *Manager) ClusterScatterPoints(trades []core.TradeRecord) ClusterResult {
	eps, minSamples := m.cluster.Eps, m.cluster.MinSamples

	if len(trades) < minSamples {
		return ClusterResult{Noise: append([]core.TradeRecord(nil), trades...)}
	}

	durations := make([]float64, len(trades))
	returns := make([]float64, len(trades))
	for i, t := range trades {
		durations[i] = float64(t.DurationDays)
		returns[i] = t.ReturnPct
	}
	durMean, durStd := stat.MeanStdDev(durations, nil)
	retMean, retStd := stat.MeanStdDev(returns, nil)

	pts := make(tradePoints, len(trades))
	for i := range trades {
		pts[i] = tradePoint{
			vec: kdtree.Point{
				(durations[i] - durMean) / (durStd + stdEpsilon),
				(returns[i] - retMean) / (retStd + stdEpsilon),
			},
			id: i,
		}
	}
	tree := kdtree.New(pts, false)

	labels := dbscan(tree, pts, eps, minSamples)

	byCluster := make(map[int][]core.TradeRecord)
	var noise []core.TradeRecord
	maxLabel := 0
	for i, label := range labels {
		if label < 0 {
			noise = append(noise, trades[i])
			continue
		}
		byCluster[label] = append(byCluster[label], trades[i])
		if label > maxLabel {
			maxLabel = label
		}
	}

	clusters := make([]Cluster, 0, len(byCluster))
	for label := 1; label <= maxLabel; label++ {
		members := byCluster[label]
		if len(members) == 0 {
			continue
		}
		var sumDur, sumRet float64
		for _, t := range members {
			sumDur += float64(t.DurationDays)
			sumRet += t.ReturnPct
		}
		clusters = append(clusters, Cluster{
			CentroidDuration: sumDur / float64(len(members)),
			CentroidReturn:   sumRet / float64(len(members)),
			Size:             len(members),
			Trades:           members,
		})
	}

	return ClusterResult{Clusters: clusters, Noise: noise}
}

const (
	labelUnvisited = 0
	labelNoise     = -1
)

// dbscan assigns a cluster label (1-based) or labelNoise to every point.
// A point is a core point if it has at least minSamples neighbors within
// eps, counting itself.
func dbscan(tree *kdtree.Tree, pts tradePoints, eps float64, minSamples int) []int {
	labels := make([]int, len(pts))
	cid := 0

	for i := range pts {
		if labels[i] != labelUnvisited {
			continue
		}
		neighbors := rangeQuery(tree, pts[i], eps)
		if len(neighbors) < minSamples {
			labels[i] = labelNoise
			continue
		}
		cid++
		labels[i] = cid

		// Expand the cluster over the reachable set. Border points keep
		// the first cluster that reaches them.
		queue := neighbors
		for qi := 0; qi < len(queue); qi++ {
			j := queue[qi]
			if labels[j] == labelNoise {
				labels[j] = cid
			}
			if labels[j] != labelUnvisited {
				continue
			}
			labels[j] = cid
			next := rangeQuery(tree, pts[j], eps)
			if len(next) >= minSamples {
				queue = append(queue, next...)
			}
		}
	}

	return labels
}

// rangeQuery returns indices of all points within eps of q, including q.
func rangeQuery(tree *kdtree.Tree, q tradePoint, eps float64) []int {
	// Point distances are squared Euclidean.
	keep := kdtree.NewDistKeeper(eps * eps)
	tree.NearestSet(keep, q)

	var ids []int
	for _, c := range keep.Heap {
		if c.Comparable == nil {
			continue
		}
		ids = append(ids, c.Comparable.(tradePoint).id)
	}
	return ids
}

// tradePoint is a kd-tree comparable carrying the original trade index.
type tradePoint struct {
	vec kdtree.Point
	id  int
}

func (p tradePoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	return p.vec[d] - c.(tradePoint).vec[d]
}

func (p tradePoint) Dims() int { return len(p.vec) }

func (p tradePoint) Distance(c kdtree.Comparable) float64 {
	return p.vec.Distance(c.(tradePoint).vec)
}

// tradePoints implements kdtree.Interface.
type tradePoints []tradePoint

func (p tradePoints) Index(i int) kdtree.Comparable { return p[i] }
func (p tradePoints) Len() int                      { return len(p) }
func (p tradePoints) Slice(start, end int) kdtree.Interface {
	return p[start:end]
}
func (p tradePoints) Pivot(d kdtree.Dim) int {
	return tradePlane{Dim: d, tradePoints: p}.Pivot()
}

// tradePlane implements kdtree.SortSlicer for pivoting along one dimension.
type tradePlane struct {
	kdtree.Dim
	tradePoints
}

func (p tradePlane) Less(i, j int) bool {
	return p.tradePoints[i].vec[p.Dim] < p.tradePoints[j].vec[p.Dim]
}
func (p tradePlane) Pivot() int {
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}
func (p tradePlane) Slice(start, end int) kdtree.SortSlicer {
	p.tradePoints = p.tradePoints[start:end]
	return p
}
func (p tradePlane) Swap(i, j int) {
	p.tradePoints[i], p.tradePoints[j] = p.tradePoints[j], p.tradePoints[i]
}
