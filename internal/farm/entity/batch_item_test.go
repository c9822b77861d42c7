package entity

import "testing"

func TestItemStatusValid(t *testing.T) {
	valid := []ItemStatus{
		ItemInoculated, ItemIncubating, ItemReadyToFruit,
		ItemFruitingPinning, ItemFruitingMaturing, ItemFruitingReady,
		ItemFruitingOvermature, ItemContaminated, ItemDisposed, ItemFailed,
	}
	for _, s := range valid {
		if !s.Valid() {
			t.Errorf("expected %s to be valid", s)
		}
	}
	for _, s := range []ItemStatus{"", "HARVESTED", "fruiting_ready"} {
		if s.Valid() {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestCanTransitionNormalPath(t *testing.T) {
	// 正常态之间双向可达（出菇期复壮/翻潮会回退）
	if !CanTransition(ItemInoculated, ItemIncubating) {
		t.Error("forward transition should be allowed")
	}
	if !CanTransition(ItemFruitingOvermature, ItemFruitingPinning) {
		t.Error("backward transition should be allowed")
	}
	if !CanTransition(ItemFruitingReady, ItemFruitingReady) {
		t.Error("self transition should be allowed")
	}
}

func TestCanTransitionExceptionTerminal(t *testing.T) {
	// 异常态不可迁出
	for _, from := range []ItemStatus{ItemContaminated, ItemDisposed, ItemFailed} {
		if CanTransition(from, ItemIncubating) {
			t.Errorf("%s should be terminal", from)
		}
		if CanTransition(from, ItemFailed) {
			t.Errorf("%s should not move to another exception state", from)
		}
	}
	// 任何非异常态可进入异常
	for _, to := range []ItemStatus{ItemContaminated, ItemDisposed, ItemFailed} {
		if !CanTransition(ItemInoculated, to) {
			t.Errorf("INOCULATED should reach %s", to)
		}
		if !CanTransition(ItemFruitingOvermature, to) {
			t.Errorf("FRUITING_OVERMATURE should reach %s", to)
		}
	}
}

func TestIsFruitingPhase(t *testing.T) {
	if !ItemReadyToFruit.IsFruitingPhase() {
		t.Error("READY_TO_FRUIT belongs to the fruiting phase")
	}
	if ItemIncubating.IsFruitingPhase() {
		t.Error("INCUBATING is not a fruiting phase status")
	}
	if ItemContaminated.IsFruitingPhase() {
		t.Error("exception states are not fruiting phase")
	}
}
