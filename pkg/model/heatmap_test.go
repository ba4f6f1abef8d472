package model

import (
	"math"
	"testing"
)

func TestBuildHeatmapMatrixAlignsClusters(t *testing.T) {
	rows := []GeneMedians{
		{GeneName: "Gad1", Medians: ClusterMedians{
			Clusters: []string{"c1", "c2", "c3"},
			Medians:  []float64{1, 2, 3},
		}},
		{GeneName: "Gad2", Medians: ClusterMedians{
			Clusters: []string{"c1", "c3"},
			Medians:  []float64{4, 6},
		}},
	}

	matrix := BuildHeatmapMatrix(rows, false)
	if len(matrix.Genes) != 2 || len(matrix.Clusters) != 3 {
		t.Fatalf("unexpected shape: %v x %v", matrix.Genes, matrix.Clusters)
	}
	// Gad2 has no value for c2, the slot fills with NaN.
	if !math.IsNaN(matrix.Z[1][1]) {
		t.Errorf("missing cluster value should be NaN, got %v", matrix.Z[1][1])
	}
	if matrix.Z[1][2] != 6 {
		t.Errorf("aligned value wrong: %v", matrix.Z[1][2])
	}
}

func TestBuildHeatmapMatrixNormalizeRow(t *testing.T) {
	rows := []GeneMedians{
		{GeneName: "Gad1", Medians: ClusterMedians{
			Clusters: []string{"c1", "c2", "c3"},
			Medians:  []float64{2, 4, 6},
		}},
	}

	matrix := BuildHeatmapMatrix(rows, true)
	want := []float64{0, 0.5, 1}
	for i, w := range want {
		if math.Abs(matrix.Z[0][i]-w) > 1e-9 {
			t.Errorf("normalized row[%d] = %v, want %v", i, matrix.Z[0][i], w)
		}
	}
}

func TestBuildCombinedHeatmapSharedAxis(t *testing.T) {
	hsaRows := []GeneMedians{
		{GeneName: "GAD1", Medians: ClusterMedians{
			Clusters: []string{"hsa_1", "shared", ""},
			Medians:  []float64{1, 2, 99},
		}},
	}
	mmuRows := []GeneMedians{
		{GeneName: "Gad1", Medians: ClusterMedians{
			Clusters: []string{"shared", "mmu_1"},
			Medians:  []float64{3, 4},
		}},
		// Missing ortholog row: no clusters at all.
		{GeneName: "*N/A GAD2"},
	}

	hsa, mmu := BuildCombinedHeatmap(hsaRows, mmuRows, false)

	// Outer join of both cluster sets, empty labels skipped.
	wantClusters := []string{"hsa_1", "shared", "mmu_1"}
	if len(hsa.Clusters) != len(wantClusters) {
		t.Fatalf("unexpected cluster axis: %v", hsa.Clusters)
	}
	for i, c := range wantClusters {
		if hsa.Clusters[i] != c {
			t.Fatalf("unexpected cluster axis: %v", hsa.Clusters)
		}
	}

	if hsa.Z[0][0] != 1 || hsa.Z[0][1] != 2 {
		t.Errorf("unexpected human row: %v", hsa.Z[0])
	}
	if !math.IsNaN(hsa.Z[0][2]) {
		t.Errorf("human row should be NaN at mmu_1, got %v", hsa.Z[0][2])
	}
	if mmu.Z[0][1] != 3 || mmu.Z[0][2] != 4 {
		t.Errorf("unexpected mouse row: %v", mmu.Z[0])
	}
	for _, v := range mmu.Z[1] {
		if !math.IsNaN(v) {
			t.Errorf("missing-ortholog row should be all NaN, got %v", mmu.Z[1])
		}
	}
}
