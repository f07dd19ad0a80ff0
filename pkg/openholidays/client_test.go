package openholidays

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicHolidaysParsesPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ES", r.URL.Query().Get("countryIsoCode"))
		assert.Equal(t, "ES-AN", r.URL.Query().Get("subdivisionCode"))
		assert.Equal(t, "2026-01-01", r.URL.Query().Get("validFrom"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"startDate":"2026-01-01","name":[{"language":"ES","text":"Año Nuevo"},{"language":"EN","text":"New Year"}]},
			{"startDate":"2026-02-28","name":[{"language":"ES","text":"Día de Andalucía"}],"subdivisions":[{"code":"ES-AN"}]},
			{"startDate":"","name":[{"language":"ES","text":"sin fecha"}]}
		]`))
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second)
	from := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC)

	holidays, err := client.PublicHolidays(context.Background(), "ES", "ES-AN", "ES", from, to)
	require.NoError(t, err)
	require.Len(t, holidays, 2)

	assert.Equal(t, "Año Nuevo", holidays[0].Name)
	assert.Empty(t, holidays[0].SubdivisionCodes)
	assert.Equal(t, "Día de Andalucía", holidays[1].Name)
	assert.Equal(t, []string{"ES-AN"}, holidays[1].SubdivisionCodes)
}

func TestPublicHolidaysNameFallback(t *testing.T) {
	assert.Equal(t, "New Year", pickName([]apiName{{Language: "EN", Text: "New Year"}}, "ES"))
	assert.Equal(t, "Neujahr", pickName([]apiName{{Language: "DE", Text: "Neujahr"}}, "ES"))
	assert.Equal(t, "Festivo", pickName(nil, "ES"))
}

func TestPublicHolidaysErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second)
	_, err := client.PublicHolidays(context.Background(), "ES", "", "ES", time.Now(), time.Now())
	assert.Error(t, err)
}
