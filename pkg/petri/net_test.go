package petri

import "testing"

// seqNet builds a net accepting exactly the trace a, b.
func seqNet(t *testing.T) *System {
	t.Helper()
	net := NewNet("seq")
	p0 := net.AddPlace("p0")
	p1 := net.AddPlace("p1")
	p2 := net.AddPlace("p2")
	a := net.AddTransition("t_a", "a")
	b := net.AddTransition("t_b", "b")
	for _, arc := range []struct{ from, to any }{
		{p0, a}, {a, p1}, {p1, b}, {b, p2},
	} {
		if err := net.AddArc(arc.from, arc.to, 1); err != nil {
			t.Fatalf("AddArc failed: %v", err)
		}
	}
	return &System{
		Net:            net,
		InitialMarking: Marking{p0: 1},
		FinalMarking:   Marking{p2: 1},
	}
}

func TestNet_EnabledAndFire(t *testing.T) {
	sys := seqNet(t)
	net := sys.Net

	a := net.TransitionsWithLabel("a")[0]
	b := net.TransitionsWithLabel("b")[0]

	if !net.Enabled(sys.InitialMarking, a) {
		t.Error("a should be enabled initially")
	}
	if net.Enabled(sys.InitialMarking, b) {
		t.Error("b should not be enabled initially")
	}

	m := net.Fire(sys.InitialMarking, a)
	if !net.Enabled(m, b) {
		t.Error("b should be enabled after firing a")
	}
	if len(sys.InitialMarking) != 1 {
		t.Error("Fire must not mutate the source marking")
	}

	m = net.Fire(m, b)
	if !m.Equal(sys.FinalMarking) {
		t.Errorf("expected final marking, got %v", m.Key())
	}
}

func TestMarking_Key(t *testing.T) {
	sys := seqNet(t)
	places := sys.Net.Places()

	m1 := Marking{places[0]: 1, places[1]: 2}
	m2 := Marking{places[1]: 2, places[0]: 1}
	if m1.Key() != m2.Key() {
		t.Errorf("equal markings must share a key: %q vs %q", m1.Key(), m2.Key())
	}

	m3 := Marking{places[0]: 1, places[2]: 0}
	m4 := Marking{places[0]: 1}
	if m3.Key() != m4.Key() {
		t.Errorf("zero entries must not change the key: %q vs %q", m3.Key(), m4.Key())
	}
}

func TestMarking_Geq(t *testing.T) {
	sys := seqNet(t)
	places := sys.Net.Places()

	big := Marking{places[0]: 2, places[1]: 1}
	small := Marking{places[0]: 1}
	if !big.Geq(small) {
		t.Error("big should cover small")
	}
	if small.Geq(big) {
		t.Error("small should not cover big")
	}
}

func TestNet_SilentClosure(t *testing.T) {
	net := NewNet("silent")
	p0 := net.AddPlace("p0")
	p1 := net.AddPlace("p1")
	p2 := net.AddPlace("p2")
	tau1 := net.AddTransition("tau1", "")
	tau2 := net.AddTransition("tau2", "")
	net.AddArc(p0, tau1, 1)
	net.AddArc(tau1, p1, 1)
	net.AddArc(p1, tau2, 1)
	net.AddArc(tau2, p2, 1)

	closure := net.SilentClosure(Marking{p0: 1})
	if len(closure) != 3 {
		t.Fatalf("expected 3 reachable markings, got %d", len(closure))
	}

	found := false
	for _, m := range closure {
		if m.Equal(Marking{p2: 1}) {
			found = true
		}
	}
	if !found {
		t.Error("closure should reach the marking behind both taus")
	}
}

func TestNet_VisibleLabels(t *testing.T) {
	sys := seqNet(t)
	sys.Net.AddTransition("tau", "")

	labels := sys.Net.VisibleLabels()
	if len(labels) != 2 {
		t.Fatalf("expected 2 visible labels, got %d", len(labels))
	}
	if _, ok := labels["a"]; !ok {
		t.Error("missing label a")
	}
}

func TestNet_CanReachFinal(t *testing.T) {
	sys := seqNet(t)
	if sys.Net.CanReachFinal(sys.FinalMarking, sys.FinalMarking) == false {
		t.Error("final marking reaches itself")
	}
	if sys.Net.CanReachFinal(sys.InitialMarking, sys.FinalMarking) {
		t.Error("visible transitions must not count as silent reachability")
	}
}
