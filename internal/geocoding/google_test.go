package geocoding_test

import (
	"log/slog"
	"testing"

	"github.com/UnknownOlympus/vicinity/internal/geocoding"
	"github.com/UnknownOlympus/vicinity/test/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"
)

func TestGeocode(t *testing.T) {
	mockClient := mocks.NewGeocodeAPIClient(t)
	provider := geocoding.NewGoogleProvider(mockClient, "mx", slog.Default())
	ctx := t.Context()

	newRequest := func(address string) *maps.GeocodingRequest {
		return &maps.GeocodingRequest{
			Address:    address,
			Components: map[maps.Component]string{maps.ComponentCountry: "mx"},
		}
	}

	t.Run("api returns error", func(t *testing.T) {
		address := "some invalid place"

		mockClient.On("Geocode", ctx, newRequest(address)).Return(nil, assert.AnError).Once()

		_, err := provider.Geocode(ctx, address)

		require.Error(t, err)
		require.ErrorIs(t, err, assert.AnError)
	})

	t.Run("api return empty response", func(t *testing.T) {
		address := "some invalid place"

		mockClient.On("Geocode", ctx, newRequest(address)).Return(nil, nil).Once()

		coords, err := provider.Geocode(ctx, address)

		require.Nil(t, coords)
		require.ErrorIs(t, err, geocoding.ErrEmptyResponse)
	})

	t.Run("successfull geocoding", func(t *testing.T) {
		address := "Blvd. Antonio Rosales 100, Los Mochis"
		mockReponse := []maps.GeocodingResult{
			{Geometry: maps.AddressGeometry{Location: maps.LatLng{Lat: 25.79, Lng: -108.99}}},
		}

		mockClient.On("Geocode", ctx, newRequest(address)).Return(mockReponse, nil).Once()

		coords, err := provider.Geocode(ctx, address)

		require.NoError(t, err)
		require.NotNil(t, coords)
		require.InEpsilon(t, 25.79, coords.Latitude, 0.01)
		require.InEpsilon(t, -108.99, coords.Longitude, 0.01)
	})

	t.Run("no country restriction", func(t *testing.T) {
		unrestricted := geocoding.NewGoogleProvider(mockClient, "", slog.Default())
		address := "Plaza Mayor, Madrid"
		req := &maps.GeocodingRequest{Address: address}
		mockReponse := []maps.GeocodingResult{
			{Geometry: maps.AddressGeometry{Location: maps.LatLng{Lat: 40.41, Lng: -3.70}}},
		}

		mockClient.On("Geocode", ctx, req).Return(mockReponse, nil).Once()

		coords, err := unrestricted.Geocode(ctx, address)

		require.NoError(t, err)
		require.InEpsilon(t, 40.41, coords.Latitude, 0.01)
	})
}
