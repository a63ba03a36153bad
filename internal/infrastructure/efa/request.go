package efa

import (
	"encoding/xml"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/haltestellenmonitor/internal/domain"
	"github.com/haltestellenmonitor/internal/pkg/validator"
)

const (
	// DefaultPageSize - размер страницы для интерактивного табло
	DefaultPageSize = 40
	// WidgetPageSize - размер страницы для виджета без пользователя
	WidgetPageSize = 75

	triasNamespace = "http://www.vdv.de/trias"
	siriNamespace  = "http://www.siri.org.uk/siri"
	triasVersion   = "1.2"

	tripDateLayout = "20060102"
	tripTimeLayout = "1504"
)

type triasRequest struct {
	XMLName        xml.Name            `xml:"Trias"`
	Version        string              `xml:"version,attr"`
	Xmlns          string              `xml:"xmlns,attr"`
	XmlnsSiri      string              `xml:"xmlns:siri,attr"`
	ServiceRequest triasServiceRequest `xml:"ServiceRequest"`
}

type triasServiceRequest struct {
	RequestTimestamp string              `xml:"siri:RequestTimestamp"`
	RequestorRef     string              `xml:"siri:RequestorRef"`
	RequestPayload   triasRequestPayload `xml:"RequestPayload"`
}

type triasRequestPayload struct {
	StopEventRequest triasStopEventRequest `xml:"StopEventRequest"`
}

type triasStopEventRequest struct {
	Location triasRequestLocation `xml:"Location"`
	Params   triasRequestParams   `xml:"Params"`
}

type triasRequestLocation struct {
	StopPointRef string `xml:"LocationRef>StopPointRef"`
	DepArrTime   string `xml:"DepArrTime"`
}

type triasRequestParams struct {
	NumberOfResults      int    `xml:"NumberOfResults"`
	StopEventType        string `xml:"StopEventType"`
	IncludePreviousCalls bool   `xml:"IncludePreviousCalls"`
	IncludeOnwardCalls   bool   `xml:"IncludeOnwardCalls"`
	IncludeRealtimeData  bool   `xml:"IncludeRealtimeData"`
}

// ClampTime - табло никогда не запрашивается в прошлом
func ClampTime(t, now time.Time) time.Time {
	if t.IsZero() || t.Before(now) {
		return now
	}
	return t
}

// BuildDepartureRequest сериализует TRIAS StopEventRequest. Время в
// прошлом заменяется на now, нулевой Limit - на DefaultPageSize.
func BuildDepartureRequest(q domain.DepartureQuery, requestorRef string, now time.Time) ([]byte, error) {
	if err := validateQuery(&q); err != nil {
		return nil, err
	}

	limit := q.Limit
	if limit == 0 {
		limit = DefaultPageSize
	}

	doc := triasRequest{
		Version:   triasVersion,
		Xmlns:     triasNamespace,
		XmlnsSiri: siriNamespace,
		ServiceRequest: triasServiceRequest{
			RequestTimestamp: now.UTC().Format(time.RFC3339),
			RequestorRef:     requestorRef,
			RequestPayload: triasRequestPayload{
				StopEventRequest: triasStopEventRequest{
					Location: triasRequestLocation{
						StopPointRef: q.StopGID,
						DepArrTime:   ClampTime(q.Time, now).UTC().Format(time.RFC3339),
					},
					Params: triasRequestParams{
						NumberOfResults:     limit,
						StopEventType:       "departure",
						IncludeRealtimeData: true,
					},
				},
			},
		},
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal departure request: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}

// BuildTripStopTimesRequest собирает form-encoded тело запроса
// XML_TRIPSTOPTIMES_REQUEST. Дата и время - в часовом поясе loc
// (бэкенд принимает только yyyyMMdd и HHmm местного времени).
func BuildTripStopTimesRequest(q domain.TripQuery, loc *time.Location) (string, error) {
	if err := validateQuery(&q); err != nil {
		return "", err
	}
	if loc == nil {
		loc = time.Local
	}

	ref := q.Time
	if ref.IsZero() {
		ref = time.Now()
	}
	local := ref.In(loc)

	values := url.Values{}
	values.Set("outputFormat", "rapidJSON")
	values.Set("coordOutputFormat", "WGS84[dd.ddddd]")
	values.Set("useRealtime", "1")
	values.Set("stopID", q.StopGID)
	values.Set("line", q.LineID)
	values.Set("tripCode", strconv.Itoa(q.TripCode))
	values.Set("date", local.Format(tripDateLayout))
	values.Set("time", local.Format(tripTimeLayout))

	return values.Encode(), nil
}

// BuildDepartureMonitorRequest - rapidJSON XML_DM_REQUEST для табло с
// описанием рейсов (нужно для карточки рейса)
func BuildDepartureMonitorRequest(q domain.DepartureQuery, loc *time.Location, now time.Time) (string, error) {
	if err := validateQuery(&q); err != nil {
		return "", err
	}
	if loc == nil {
		loc = time.Local
	}

	limit := q.Limit
	if limit == 0 {
		limit = DefaultPageSize
	}
	local := ClampTime(q.Time, now).In(loc)

	values := url.Values{}
	values.Set("outputFormat", "rapidJSON")
	values.Set("coordOutputFormat", "WGS84[dd.ddddd]")
	values.Set("useRealtime", "1")
	values.Set("mode", "direct")
	values.Set("type_dm", "stop")
	values.Set("name_dm", q.StopGID)
	values.Set("limit", strconv.Itoa(limit))
	values.Set("itdDate", local.Format(tripDateLayout))
	values.Set("itdTime", local.Format(tripTimeLayout))

	return values.Encode(), nil
}

// validateQuery: пустая остановка - ErrEmptyStopID, прочее - ErrInvalidQuery
func validateQuery(q interface{}) error {
	err := validator.Validate(q)
	if err == nil {
		return nil
	}
	if validator.FieldFailed(err, "StopGID") {
		return fmt.Errorf("%w: %v", domain.ErrEmptyStopID, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrInvalidQuery, err)
}
