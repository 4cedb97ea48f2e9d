package marketplace

import (
	"github.com/draze/draze-cli/internal/derive"
)

// ActiveBeds is the number of beds the landlord's active plans allow.
func ActiveBeds(subs []Subscription) int {
	return int(derive.SumWhere(subs, Subscription.Active, func(s Subscription) float64 {
		return float64(s.Plan.MaxBeds)
	}))
}

// BedsUsed is the number of beds taken under active plans.
func BedsUsed(subs []Subscription) int {
	return int(derive.SumWhere(subs, Subscription.Active, func(s Subscription) float64 {
		return float64(s.BedsUsed)
	}))
}

// TotalDues sums the bills not yet paid.
func TotalDues(dues []Due) float64 {
	return derive.SumWhere(dues, Due.Outstanding, func(d Due) float64 { return d.Amount })
}

// MonthlyRent sums the rent of every tenant.
func MonthlyRent(tenants []Tenant) float64 {
	return derive.SumWhere(tenants, nil, func(t Tenant) float64 { return t.RentAmount })
}

// ForecastTotal returns expected and collected amounts over the forecast.
func ForecastTotal(entries []ForecastEntry) (expected, collected float64) {
	expected = derive.SumWhere(entries, nil, func(f ForecastEntry) float64 { return f.Expected })
	collected = derive.SumWhere(entries, nil, func(f ForecastEntry) float64 { return f.Collected })
	return expected, collected
}

// OpenComplaints counts complaints that are neither resolved nor closed.
func OpenComplaints(cs []Complaint) int {
	return derive.CountWhere(cs, func(c Complaint) bool {
		return c.Status != "resolved" && c.Status != "closed"
	})
}

// SearchTenants filters tenants by name, mobile or email.
func SearchTenants(tenants []Tenant, query string) []Tenant {
	return derive.Filter(tenants, query,
		func(t Tenant) string { return t.Name },
		func(t Tenant) string { return t.Mobile },
		func(t Tenant) string { return t.Email },
	)
}

// SearchProperties filters properties by name, city or address.
func SearchProperties(props []Property, query string) []Property {
	return derive.Filter(props, query,
		func(p Property) string { return p.Name },
		func(p Property) string { return p.City },
		func(p Property) string { return p.Address },
	)
}
