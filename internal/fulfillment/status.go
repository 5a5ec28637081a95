package fulfillment

type Status string

const (
	StatusNuevo     Status = "nuevo"
	StatusPagado    Status = "pagado"
	StatusEnviado   Status = "enviado"
	StatusEntregado Status = "entregado"
	StatusCancelado Status = "cancelado"
)

var validNext = map[Status]map[Status]bool{
	StatusNuevo:     {StatusPagado: true, StatusCancelado: true},
	StatusPagado:    {StatusEnviado: true, StatusCancelado: true},
	StatusEnviado:   {StatusEntregado: true},
	StatusEntregado: {},
	StatusCancelado: {},
}

func (s Status) Valid() bool {
	_, ok := validNext[s]
	return ok
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// IsPaidTransition reports whether moving from -> to is the one
// transition with side effects: entering pagado from any other state.
// Re-writing pagado over pagado does not qualify, which is what makes
// the stock deduction one-shot per order.
func IsPaidTransition(from, to Status) bool {
	return to == StatusPagado && from != StatusPagado
}
