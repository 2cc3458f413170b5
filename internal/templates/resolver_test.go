package templates

import (
	"testing"

	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/models"
	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestResolve(t *testing.T) {
	t.Run("substitutes known tokens", func(t *testing.T) {
		ctx := Context{
			CustomerName: "Tanaka",
			PropertyName: "Ebisu Heights 302",
			StoreName:    "Ebisu Branch",
		}

		got := Resolve("{{customer_name}} 様、{{property_name}}のご案内です({{store_name}})", ctx)
		assert.Equal(t, "Tanaka 様、Ebisu Heights 302のご案内です(Ebisu Branch)", got)
	})

	t.Run("missing values resolve to empty string", func(t *testing.T) {
		got := Resolve("Hello {{customer_name}}, from {{staff_name}}", Context{CustomerName: "Sato"})
		assert.Equal(t, "Hello Sato, from ", got)
	})

	t.Run("unrecognized tokens are left verbatim", func(t *testing.T) {
		got := Resolve("{{customer_name}} {{no_such_token}}", Context{CustomerName: "Sato"})
		assert.Equal(t, "Sato {{no_such_token}}", got)
	})

	t.Run("malformed braces are left verbatim", func(t *testing.T) {
		got := Resolve("{{customer_name}", Context{CustomerName: "Sato"})
		assert.Equal(t, "{{customer_name}", got)
	})

	t.Run("empty template resolves to empty", func(t *testing.T) {
		assert.Equal(t, "", Resolve("", Context{CustomerName: "Sato"}))
	})
}

func TestResolveLegacy(t *testing.T) {
	ctx := Context{CustomerName: "Suzuki", StorePhone: "03-1234-5678"}

	t.Run("substitutes single-brace tokens", func(t *testing.T) {
		got := ResolveLegacy("{customer_name} 様 ({store_phone})", ctx)
		assert.Equal(t, "Suzuki 様 (03-1234-5678)", got)
	})

	t.Run("double-brace tokens still resolve", func(t *testing.T) {
		got := ResolveLegacy("{{customer_name}} and {customer_name}", ctx)
		assert.Equal(t, "Suzuki and Suzuki", got)
	})
}

func TestBuildContext(t *testing.T) {
	t.Run("uses store fields when set", func(t *testing.T) {
		customer := &models.Customer{
			Name:         "Tanaka",
			Email:        strPtr("tanaka@example.com"),
			AssigneeName: strPtr("Yamada"),
			PropertyName: strPtr("Ebisu Heights 302"),
		}
		org := &models.Organization{
			Name:         "Sakura Estate Co.",
			Address:      strPtr("HQ address"),
			Phone:        strPtr("03-0000-0000"),
			StoreName:    strPtr("Ebisu Branch"),
			StoreAddress: strPtr("Branch address"),
			StorePhone:   strPtr("03-1111-1111"),
		}

		ctx := BuildContext(customer, org)

		assert.Equal(t, "Tanaka", ctx.CustomerName)
		assert.Equal(t, "tanaka@example.com", ctx.CustomerEmail)
		assert.Equal(t, "Yamada", ctx.StaffName)
		assert.Equal(t, "Ebisu Branch", ctx.StoreName)
		assert.Equal(t, "Branch address", ctx.StoreAddress)
		assert.Equal(t, "03-1111-1111", ctx.StorePhone)
	})

	t.Run("falls back to organization fields when store fields are unset", func(t *testing.T) {
		customer := &models.Customer{Name: "Tanaka"}
		org := &models.Organization{
			Name:          "Sakura Estate Co.",
			Address:       strPtr("HQ address"),
			Phone:         strPtr("03-0000-0000"),
			BusinessHours: strPtr("10:00-19:00"),
		}

		ctx := BuildContext(customer, org)

		assert.Equal(t, "Sakura Estate Co.", ctx.StoreName)
		assert.Equal(t, "HQ address", ctx.StoreAddress)
		assert.Equal(t, "03-0000-0000", ctx.StorePhone)
		assert.Equal(t, "10:00-19:00", ctx.StoreHours)
	})

	t.Run("empty store fields also fall back", func(t *testing.T) {
		customer := &models.Customer{Name: "Tanaka"}
		org := &models.Organization{
			Name:      "Sakura Estate Co.",
			StoreName: strPtr(""),
		}

		ctx := BuildContext(customer, org)
		assert.Equal(t, "Sakura Estate Co.", ctx.StoreName)
	})

	t.Run("nil organization leaves company fields empty", func(t *testing.T) {
		customer := &models.Customer{Name: "Tanaka"}
		ctx := BuildContext(customer, nil)

		assert.Equal(t, "Tanaka", ctx.CustomerName)
		assert.Equal(t, "", ctx.CompanyName)
		assert.Equal(t, "", ctx.StoreName)
	})
}
