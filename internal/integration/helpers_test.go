package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/metinatakli/movie-booking-service/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var keysToIgnore = map[string]struct{}{
	"timestamp": {},
	"requestId": {},
	"createdAt": {},
	"updatedAt": {},
}

var testShowStart = time.Date(2095, 1, 1, 19, 0, 0, 0, time.UTC)

func prepareRequest(method, path string, body io.Reader, headers map[string]string) (*http.Request, error) {
	req := httptest.NewRequest(method, path, body)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req, nil
}

func compareResponse(t *testing.T, body io.Reader, expectedResponse string) {
	var actual map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&actual))

	cleanMap(actual)

	var expected map[string]any
	require.NoError(t, json.Unmarshal([]byte(expectedResponse), &expected))

	// ignore indetermistic fields while comparing
	opts := cmpopts.IgnoreMapEntries(func(k string, _ any) bool {
		_, ok := keysToIgnore[k]
		return ok
	})

	if diff := cmp.Diff(expected, actual, opts); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

func cleanMap(m map[string]any) {
	for k := range m {
		if _, ok := keysToIgnore[k]; ok {
			delete(m, k)
			continue
		}
		if nested, ok := m[k].(map[string]any); ok {
			cleanMap(nested)
		}
	}
}

func resetDatabase(t testing.TB, app *TestApp) {
	t.Helper()

	_, err := app.DB.Exec(context.Background(),
		`TRUNCATE payments, bookings, shows RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
}

func authHeaders(t testing.TB, userID int, role domain.Role) map[string]string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub":  strconv.Itoa(userID),
		"role": string(role),
		"exp":  time.Now().Add(time.Hour).Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)

	return map[string]string{"Authorization": "Bearer " + token}
}

func createShow(t testing.TB, app *TestApp, totalSeats int) *domain.Show {
	t.Helper()

	show := &domain.Show{
		MovieID:    3,
		TheatreID:  5,
		ScreenName: "Screen 1",
		StartTime:  testShowStart,
		EndTime:    testShowStart.Add(2 * time.Hour),
		Price:      decimal.RequireFromString("12.50"),
		Currency:   domain.DefaultCurrency,
		TotalSeats: totalSeats,
	}

	require.NoError(t, app.Shows.Create(context.Background(), show))

	return show
}

func availableSeats(t testing.TB, app *TestApp, showID int) int {
	t.Helper()

	show, err := app.Shows.GetById(context.Background(), showID)
	require.NoError(t, err)

	return show.AvailableSeats
}
