package efa

import (
	"net/url"
	"testing"
	"time"

	"github.com/haltestellenmonitor/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDepartureRequest(t *testing.T) {
	now := time.Date(2025, 3, 26, 10, 0, 0, 0, time.UTC)

	t.Run("past time is clamped to now", func(t *testing.T) {
		q := domain.DepartureQuery{StopGID: "de:14612:28", Time: now.Add(-2 * time.Hour)}

		body, err := BuildDepartureRequest(q, "test", now)
		require.NoError(t, err)

		xml := string(body)
		assert.Contains(t, xml, "<DepArrTime>2025-03-26T10:00:00Z</DepArrTime>")
		assert.Contains(t, xml, "<StopPointRef>de:14612:28</StopPointRef>")
		assert.Contains(t, xml, "<NumberOfResults>40</NumberOfResults>")
		assert.Contains(t, xml, "<siri:RequestorRef>test</siri:RequestorRef>")
		assert.Contains(t, xml, `xmlns:siri="http://www.siri.org.uk/siri"`)
	})

	t.Run("future time is kept", func(t *testing.T) {
		q := domain.DepartureQuery{StopGID: "de:14612:28", Time: now.Add(90 * time.Minute)}

		body, err := BuildDepartureRequest(q, "test", now)
		require.NoError(t, err)
		assert.Contains(t, string(body), "<DepArrTime>2025-03-26T11:30:00Z</DepArrTime>")
	})

	t.Run("zero time means now", func(t *testing.T) {
		body, err := BuildDepartureRequest(domain.DepartureQuery{StopGID: "de:14612:28"}, "test", now)
		require.NoError(t, err)
		assert.Contains(t, string(body), "<DepArrTime>2025-03-26T10:00:00Z</DepArrTime>")
	})

	t.Run("widget page size", func(t *testing.T) {
		q := domain.DepartureQuery{StopGID: "de:14612:28", Limit: WidgetPageSize}

		body, err := BuildDepartureRequest(q, "test", now)
		require.NoError(t, err)
		assert.Contains(t, string(body), "<NumberOfResults>75</NumberOfResults>")
	})

	t.Run("empty stop id", func(t *testing.T) {
		_, err := BuildDepartureRequest(domain.DepartureQuery{}, "test", now)
		assert.ErrorIs(t, err, domain.ErrEmptyStopID)
		assert.NotErrorIs(t, err, domain.ErrInvalidQuery)
	})

	t.Run("limit out of range", func(t *testing.T) {
		_, err := BuildDepartureRequest(domain.DepartureQuery{StopGID: "de:14612:28", Limit: 500}, "test", now)
		assert.ErrorIs(t, err, domain.ErrInvalidQuery)
		assert.NotErrorIs(t, err, domain.ErrEmptyStopID)
	})
}

func TestClampTime(t *testing.T) {
	now := time.Date(2025, 3, 26, 10, 0, 0, 0, time.UTC)

	for _, offset := range []time.Duration{-24 * time.Hour, -time.Second, 0, time.Second, 3 * time.Hour} {
		got := ClampTime(now.Add(offset), now)
		assert.False(t, got.Before(now), "offset %s", offset)
		if offset > 0 {
			assert.Equal(t, now.Add(offset), got)
		}
	}
}

func TestBuildTripStopTimesRequest(t *testing.T) {
	cet := time.FixedZone("CET", 3600)

	t.Run("local date and time", func(t *testing.T) {
		q := domain.TripQuery{
			StopGID:  "de:14612:28",
			LineID:   "voe:11003: :H:j25",
			TripCode: 4711,
			Time:     time.Date(2025, 3, 26, 6, 15, 0, 0, time.UTC),
		}

		form, err := BuildTripStopTimesRequest(q, cet)
		require.NoError(t, err)

		values, err := url.ParseQuery(form)
		require.NoError(t, err)
		assert.Equal(t, "rapidJSON", values.Get("outputFormat"))
		assert.Equal(t, "de:14612:28", values.Get("stopID"))
		assert.Equal(t, "voe:11003: :H:j25", values.Get("line"))
		assert.Equal(t, "4711", values.Get("tripCode"))
		assert.Equal(t, "20250326", values.Get("date"))
		assert.Equal(t, "0715", values.Get("time"))
		assert.Equal(t, "1", values.Get("useRealtime"))
	})

	t.Run("trip code defaults to zero", func(t *testing.T) {
		q := domain.TripQuery{StopGID: "de:14612:28", LineID: "voe:11003: :H:j25", Time: time.Now()}

		form, err := BuildTripStopTimesRequest(q, cet)
		require.NoError(t, err)

		values, err := url.ParseQuery(form)
		require.NoError(t, err)
		assert.Equal(t, "0", values.Get("tripCode"))
	})

	t.Run("midnight crossing uses local day", func(t *testing.T) {
		q := domain.TripQuery{StopGID: "de:14612:28", LineID: "x", Time: time.Date(2025, 3, 26, 23, 30, 0, 0, time.UTC)}

		form, err := BuildTripStopTimesRequest(q, cet)
		require.NoError(t, err)

		values, err := url.ParseQuery(form)
		require.NoError(t, err)
		assert.Equal(t, "20250327", values.Get("date"))
		assert.Equal(t, "0030", values.Get("time"))
	})

	t.Run("empty stop id", func(t *testing.T) {
		_, err := BuildTripStopTimesRequest(domain.TripQuery{LineID: "x"}, cet)
		assert.ErrorIs(t, err, domain.ErrEmptyStopID)
	})

	t.Run("empty line id", func(t *testing.T) {
		_, err := BuildTripStopTimesRequest(domain.TripQuery{StopGID: "de:14612:28"}, cet)
		assert.ErrorIs(t, err, domain.ErrInvalidQuery)
		assert.NotErrorIs(t, err, domain.ErrEmptyStopID)
	})
}

func TestBuildDepartureMonitorRequest(t *testing.T) {
	now := time.Date(2025, 3, 26, 10, 0, 0, 0, time.UTC)

	form, err := BuildDepartureMonitorRequest(domain.DepartureQuery{StopGID: "de:14612:28"}, time.UTC, now)
	require.NoError(t, err)

	values, err := url.ParseQuery(form)
	require.NoError(t, err)
	assert.Equal(t, "de:14612:28", values.Get("name_dm"))
	assert.Equal(t, "40", values.Get("limit"))
	assert.Equal(t, "20250326", values.Get("itdDate"))
	assert.Equal(t, "1000", values.Get("itdTime"))
}
