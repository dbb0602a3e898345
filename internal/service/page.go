package service

// Page is an offset/limit window requested by a client.  A zero Limit
// selects the endpoint default.
type Page struct {
	Skip  int
	Limit int
}

// Page bounds per endpoint.
const (
	ReportPageDefault = 50
	ReportPageMax     = 200
	UserPageDefault   = 100
	UserPageMax       = 500
)

func (p Page) bounds(def, max int) (offset, limit int, err error) {
	if p.Skip < 0 {
		return 0, 0, invalid("skip must be >= 0")
	}
	switch {
	case p.Limit < 0:
		return 0, 0, invalid("limit must be >= 1")
	case p.Limit == 0:
		p.Limit = def
	case p.Limit > max:
		p.Limit = max
	}
	return p.Skip, p.Limit, nil
}
