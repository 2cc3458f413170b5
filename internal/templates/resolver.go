// Package templates resolves placeholder tokens in outreach message
// templates against a fully-typed customer/organization context.
package templates

import (
	"strings"

	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/models"
)

// Context is the read-only snapshot a caller assembles before resolving a
// template. Every resolvable field is an explicit member; there is no dynamic
// property traversal.
type Context struct {
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	StaffName     string
	PropertyName  string
	PropertyURL   string
	CompanyName   string
	StoreName     string
	StoreAddress  string
	StorePhone    string
	StoreHours    string
	LineAddURL    string
	LicenseNumber string
}

// Token names recognized by Resolve. Anything else is left verbatim.
const (
	TokenCustomerName  = "customer_name"
	TokenCustomerEmail = "customer_email"
	TokenCustomerPhone = "customer_phone"
	TokenStaffName     = "staff_name"
	TokenPropertyName  = "property_name"
	TokenPropertyURL   = "property_url"
	TokenCompanyName   = "company_name"
	TokenStoreName     = "store_name"
	TokenStoreAddress  = "store_address"
	TokenStorePhone    = "store_phone"
	TokenStoreHours    = "store_hours"
	TokenLineAddURL    = "line_add_url"
	TokenLicenseNumber = "license_number"
)

func (c Context) tokenValues() map[string]string {
	return map[string]string{
		TokenCustomerName:  c.CustomerName,
		TokenCustomerEmail: c.CustomerEmail,
		TokenCustomerPhone: c.CustomerPhone,
		TokenStaffName:     c.StaffName,
		TokenPropertyName:  c.PropertyName,
		TokenPropertyURL:   c.PropertyURL,
		TokenCompanyName:   c.CompanyName,
		TokenStoreName:     c.StoreName,
		TokenStoreAddress:  c.StoreAddress,
		TokenStorePhone:    c.StorePhone,
		TokenStoreHours:    c.StoreHours,
		TokenLineAddURL:    c.LineAddURL,
		TokenLicenseNumber: c.LicenseNumber,
	}
}

// Resolve substitutes every recognized {{token}} in s with its context value.
// Missing values resolve to the empty string; unrecognized or malformed tokens
// are left verbatim. Resolve is pure and never fails for any input string.
func Resolve(s string, ctx Context) string {
	values := ctx.tokenValues()
	pairs := make([]string, 0, 2*len(values))
	for token, value := range values {
		pairs = append(pairs, "{{"+token+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(s)
}

// ResolveLegacy additionally substitutes the historical single-brace dialect
// ({token}) still present in templates authored through the old settings UI.
// Double-brace tokens are resolved first so "{{token}}" never degrades into
// a stray brace pair.
func ResolveLegacy(s string, ctx Context) string {
	s = Resolve(s, ctx)
	values := ctx.tokenValues()
	pairs := make([]string, 0, 2*len(values))
	for token, value := range values {
		pairs = append(pairs, "{"+token+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(s)
}

// BuildContext assembles a Context from a customer and its organization,
// applying the store-to-organization fallback chain for store fields.
func BuildContext(customer *models.Customer, org *models.Organization) Context {
	ctx := Context{
		CustomerName:  customer.Name,
		CustomerEmail: deref(customer.Email),
		CustomerPhone: deref(customer.Phone),
		StaffName:     deref(customer.AssigneeName),
		PropertyName:  deref(customer.PropertyName),
		PropertyURL:   deref(customer.PropertyURL),
	}
	if org != nil {
		ctx.CompanyName = org.Name
		ctx.LineAddURL = deref(org.LineAddURL)
		ctx.LicenseNumber = deref(org.LicenseNumber)
		ctx.StoreName = fallback(org.StoreName, &org.Name)
		ctx.StoreAddress = fallback(org.StoreAddress, org.Address)
		ctx.StorePhone = fallback(org.StorePhone, org.Phone)
		ctx.StoreHours = fallback(org.StoreHours, org.BusinessHours)
	}
	return ctx
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// fallback returns the store-level value when set, otherwise the
// organization-level one, otherwise "".
func fallback(store, org *string) string {
	if store != nil && *store != "" {
		return *store
	}
	return deref(org)
}
