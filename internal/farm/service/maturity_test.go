package service

import (
	"testing"
	"time"

	"github.com/sokying84-sketch/mycelium-nexus/internal/farm/entity"
)

func TestAggregateSampleDataEmpty(t *testing.T) {
	agg := AggregateSampleData(nil)
	if agg.AvgDiameterCM != 0 || agg.DominantShape != entity.ShapeConvex || agg.FlatPercentage != 0 {
		t.Errorf("empty samples should produce zero aggregate with CONVEX, got %+v", agg)
	}
}

func TestAggregateSampleDataAverageAndDominant(t *testing.T) {
	samples := []entity.Sample{
		{DiameterCM: 7.0, Shape: entity.ShapeConvex},
		{DiameterCM: 8.0, Shape: entity.ShapeFlat},
		{DiameterCM: 9.5, Shape: entity.ShapeFlat},
	}
	agg := AggregateSampleData(samples)
	if agg.AvgDiameterCM != 8.17 {
		t.Errorf("expected avg 8.17, got %v", agg.AvgDiameterCM)
	}
	if agg.DominantShape != entity.ShapeFlat {
		t.Errorf("expected dominant FLAT, got %s", agg.DominantShape)
	}
	if agg.FlatPercentage < 66.6 || agg.FlatPercentage > 66.7 {
		t.Errorf("expected flat percentage ~66.67, got %v", agg.FlatPercentage)
	}
}

func TestAggregateSampleDataTieBreak(t *testing.T) {
	// 并列时 UPTURNED > FLAT > CONVEX
	samples := []entity.Sample{
		{DiameterCM: 8, Shape: entity.ShapeFlat},
		{DiameterCM: 8, Shape: entity.ShapeFlat},
		{DiameterCM: 8, Shape: entity.ShapeUpturned},
		{DiameterCM: 8, Shape: entity.ShapeUpturned},
	}
	if agg := AggregateSampleData(samples); agg.DominantShape != entity.ShapeUpturned {
		t.Errorf("tie should resolve to UPTURNED, got %s", agg.DominantShape)
	}

	samples = []entity.Sample{
		{DiameterCM: 8, Shape: entity.ShapeConvex},
		{DiameterCM: 8, Shape: entity.ShapeFlat},
	}
	if agg := AggregateSampleData(samples); agg.DominantShape != entity.ShapeFlat {
		t.Errorf("tie should resolve to FLAT over CONVEX, got %s", agg.DominantShape)
	}
}

func TestCalculateMaturityIndexMaxIs90(t *testing.T) {
	// 三项都打满：30 + 40 + 20 = 90
	pinning := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	observed := pinning.AddDate(0, 0, 5)
	in := MaturityInput{
		PinningDate:    &pinning,
		ObservedAt:     observed,
		AvgDiameterCM:  8.0,
		FlatPercentage: 70,
	}
	got := CalculateMaturityIndex(in, MaturityBaseline{TargetMaturationDays: 5, TargetDiameterCM: 8.0})
	if got != 90 {
		t.Errorf("expected maximum index 90, got %d", got)
	}

	// 超出目标也封顶在 90
	in.AvgDiameterCM = 20
	in.ObservedAt = pinning.AddDate(0, 0, 30)
	in.FlatPercentage = 100
	if got := CalculateMaturityIndex(in, MaturityBaseline{TargetMaturationDays: 5, TargetDiameterCM: 8.0}); got != 90 {
		t.Errorf("index must be capped at 90, got %d", got)
	}
}

func TestCalculateMaturityIndexDeterministic(t *testing.T) {
	pinning := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	in := MaturityInput{
		PinningDate:    &pinning,
		ObservedAt:     pinning.AddDate(0, 0, 3),
		AvgDiameterCM:  4.0,
		FlatPercentage: 30,
	}
	base := MaturityBaseline{TargetMaturationDays: 5, TargetDiameterCM: 8.0}

	// 18 (time) + 20 (size) + 10 (flat bucket) = 48
	first := CalculateMaturityIndex(in, base)
	if first != 48 {
		t.Errorf("expected 48, got %d", first)
	}
	for i := 0; i < 10; i++ {
		if got := CalculateMaturityIndex(in, base); got != first {
			t.Fatalf("same input produced different index: %d vs %d", got, first)
		}
	}
}

func TestCalculateMaturityIndexNoPinning(t *testing.T) {
	in := MaturityInput{
		PinningDate:    nil,
		ObservedAt:     time.Now(),
		AvgDiameterCM:  8.0,
		FlatPercentage: 70,
	}
	// 无出针日期时时间分为 0：40 + 20 = 60
	if got := CalculateMaturityIndex(in, MaturityBaseline{}); got != 60 {
		t.Errorf("expected 60 without pinning date, got %d", got)
	}
}

func TestCalculateMaturityIndexFlatBuckets(t *testing.T) {
	base := MaturityBaseline{TargetMaturationDays: 5, TargetDiameterCM: 8.0}
	cases := []struct {
		flat float64
		want int
	}{
		{0, 0},
		{19.9, 0},
		{20, 10},
		{60, 10},
		{60.1, 20},
		{100, 20},
	}
	for _, c := range cases {
		in := MaturityInput{ObservedAt: time.Now(), FlatPercentage: c.flat}
		if got := CalculateMaturityIndex(in, base); got != c.want {
			t.Errorf("flat %.1f%%: expected %d, got %d", c.flat, c.want, got)
		}
	}
}

func TestEvaluateBatchStatusThresholds(t *testing.T) {
	cases := []struct {
		index   int
		pinning bool
		want    string
	}{
		{90, false, entity.BatchStatusGrowing}, // 未出针不升级
		{60, true, entity.BatchStatusGrowing},
		{61, true, entity.BatchStatusApproaching},
		{80, true, entity.BatchStatusApproaching},
		{81, true, entity.BatchStatusReady},
		{90, true, entity.BatchStatusReady},
	}
	for _, c := range cases {
		if got := EvaluateBatchStatus(c.index, 0, c.pinning); got != c.want {
			t.Errorf("index %d pinning=%v: expected %q, got %q", c.index, c.pinning, c.want, got)
		}
	}
}

func TestEvaluateHarvestStatusAlerts(t *testing.T) {
	if a := EvaluateHarvestStatus(81, 50, "B-001"); a == nil {
		t.Fatal("index 81 should raise an alert")
	} else if a.Recipient != entity.AlertRecipientWorkers {
		t.Errorf("index >= 81 should notify workers, got %s", a.Recipient)
	}

	if a := EvaluateHarvestStatus(61, 50, "B-001"); a == nil {
		t.Fatal("index 61 should raise an alert")
	} else if a.Recipient != entity.AlertRecipientVillageC {
		t.Errorf("index 61-80 should notify village C, got %s", a.Recipient)
	}

	if a := EvaluateHarvestStatus(60, 50, "B-001"); a != nil {
		t.Errorf("index 60 should not raise an alert, got %+v", a)
	}
}
