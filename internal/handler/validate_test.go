package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estately/portal-server-go/internal/apperr"
)

func validPropertyForm() PropertyForm {
	return PropertyForm{
		Title:         "Sunny bungalow",
		Description:   "Three bedrooms close to the park.",
		City:          "Fairfield",
		State:         "IA",
		ZipCode:       "52556",
		Address:       "12 Main St",
		Price:         250000,
		BedroomCount:  3,
		BathroomCount: 2,
		HomeType:      "House",
		SquareFootage: 1400,
	}
}

func TestOfferFormValidate(t *testing.T) {
	t.Run("accepts a valid offer", func(t *testing.T) {
		form := OfferForm{PropertyID: 7, OfferedPrice: 180000, Message: "We would love to buy this home."}
		assert.NoError(t, form.Validate())
	})

	t.Run("rejects missing property", func(t *testing.T) {
		form := OfferForm{OfferedPrice: 180000, Message: "We would love to buy this home."}
		err := form.Validate()
		require.Error(t, err)
		assert.Equal(t, apperr.ErrCodeMissingRequired, apperr.GetCode(err))
	})

	t.Run("rejects non-positive price", func(t *testing.T) {
		form := OfferForm{PropertyID: 7, OfferedPrice: 0, Message: "We would love to buy this home."}
		assert.Error(t, form.Validate())

		form.OfferedPrice = -5
		assert.Error(t, form.Validate())
	})

	t.Run("rejects short message", func(t *testing.T) {
		form := OfferForm{PropertyID: 7, OfferedPrice: 180000, Message: "too short"}
		assert.Error(t, form.Validate())
	})

	t.Run("whitespace does not count toward message length", func(t *testing.T) {
		form := OfferForm{PropertyID: 7, OfferedPrice: 180000, Message: "   hi     "}
		assert.Error(t, form.Validate())
	})
}

func TestPropertyFormValidate(t *testing.T) {
	t.Run("accepts a valid form", func(t *testing.T) {
		assert.NoError(t, validPropertyForm().Validate())
	})

	t.Run("accepts nine digit zip", func(t *testing.T) {
		form := validPropertyForm()
		form.ZipCode = "52556-1234"
		assert.NoError(t, form.Validate())
	})

	t.Run("rejects short title", func(t *testing.T) {
		form := validPropertyForm()
		form.Title = "ab"
		assert.Error(t, form.Validate())
	})

	t.Run("rejects short description", func(t *testing.T) {
		form := validPropertyForm()
		form.Description = "tiny"
		assert.Error(t, form.Validate())
	})

	t.Run("rejects malformed zip", func(t *testing.T) {
		for _, zip := range []string{"", "1234", "123456", "52556-12", "abcde"} {
			form := validPropertyForm()
			form.ZipCode = zip
			assert.Error(t, form.Validate(), "zip %q", zip)
		}
	})

	t.Run("rejects missing location fields", func(t *testing.T) {
		for _, mutate := range []func(*PropertyForm){
			func(f *PropertyForm) { f.City = " " },
			func(f *PropertyForm) { f.State = "" },
			func(f *PropertyForm) { f.Address = "" },
		} {
			form := validPropertyForm()
			mutate(&form)
			assert.Error(t, form.Validate())
		}
	})

	t.Run("rejects negative counts", func(t *testing.T) {
		form := validPropertyForm()
		form.BedroomCount = -1
		assert.Error(t, form.Validate())

		form = validPropertyForm()
		form.BathroomCount = -2
		assert.Error(t, form.Validate())
	})

	t.Run("rejects unknown home type", func(t *testing.T) {
		form := validPropertyForm()
		form.HomeType = "Castle"
		assert.Error(t, form.Validate())
	})
}

func TestCredentialsFormValidate(t *testing.T) {
	t.Run("requires both fields", func(t *testing.T) {
		assert.Error(t, CredentialsForm{Password: "secret"}.Validate())
		assert.Error(t, CredentialsForm{Email: "a@b.com"}.Validate())
		assert.NoError(t, CredentialsForm{Email: "a@b.com", Password: "secret"}.Validate())
	})
}
