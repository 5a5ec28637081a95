package fulfillment

import "testing"

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusNuevo, StatusPagado},
		{StatusNuevo, StatusCancelado},
		{StatusPagado, StatusEnviado},
		{StatusPagado, StatusCancelado},
		{StatusEnviado, StatusEntregado},
	}
	set := map[[2]Status]bool{}
	for _, tc := range allowed {
		set[[2]Status{tc.from, tc.to}] = true
		if !CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	all := []Status{StatusNuevo, StatusPagado, StatusEnviado, StatusEntregado, StatusCancelado}
	for _, from := range all {
		for _, to := range all {
			if set[[2]Status{from, to}] {
				continue
			}
			if CanTransition(from, to) {
				t.Errorf("expected %s -> %s to be rejected", from, to)
			}
		}
	}
}

func TestTerminalStates(t *testing.T) {
	all := []Status{StatusNuevo, StatusPagado, StatusEnviado, StatusEntregado, StatusCancelado}
	for _, terminal := range []Status{StatusEntregado, StatusCancelado} {
		for _, to := range all {
			if CanTransition(terminal, to) {
				t.Errorf("terminal state %s must not transition to %s", terminal, to)
			}
		}
	}
}

func TestIsPaidTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusNuevo, StatusPagado, true},
		{StatusCancelado, StatusPagado, true}, // qualifying per detection rule, even if the graph rejects it earlier
		{StatusPagado, StatusPagado, false},
		{StatusNuevo, StatusCancelado, false},
		{StatusPagado, StatusEnviado, false},
	}
	for _, tc := range cases {
		if got := IsPaidTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("IsPaidTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusNuevo, StatusPagado, StatusEnviado, StatusEntregado, StatusCancelado} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	for _, s := range []Status{"", "paid", "PAGADO", "nuevo "} {
		if s.Valid() {
			t.Errorf("%q should be invalid", s)
		}
	}
}
