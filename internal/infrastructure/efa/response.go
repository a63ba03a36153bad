package efa

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/haltestellenmonitor/internal/domain"
	"github.com/haltestellenmonitor/internal/pkg/validator"
)

// TRIAS StopEventResponse. Теги без пространства имён, encoding/xml
// сравнивает только локальные имена.
type triasResponse struct {
	XMLName         xml.Name             `xml:"Trias"`
	ServiceDelivery triasServiceDelivery `xml:"ServiceDelivery"`
}

type triasServiceDelivery struct {
	Status          string `xml:"Status"`
	DeliveryPayload struct {
		StopEventResponse struct {
			ErrorMessage    []triasErrorMessage    `xml:"ErrorMessage"`
			StopEventResult []triasStopEventResult `xml:"StopEventResult"`
		} `xml:"StopEventResponse"`
	} `xml:"DeliveryPayload"`
}

type triasErrorMessage struct {
	Code string    `xml:"Code"`
	Text triasText `xml:"Text"`
}

type triasStopEventResult struct {
	ResultID  string         `xml:"ResultId"`
	StopEvent triasStopEvent `xml:"StopEvent"`
}

type triasStopEvent struct {
	ThisCall struct {
		CallAtStop triasCallAtStop `xml:"CallAtStop"`
	} `xml:"ThisCall"`
	Service triasService `xml:"Service"`
}

type triasCallAtStop struct {
	StopPointRef     string    `xml:"StopPointRef"`
	StopPointName    triasText `xml:"StopPointName"`
	PlannedBay       triasText `xml:"PlannedBay"`
	EstimatedBay     triasText `xml:"EstimatedBay"`
	ServiceDeparture struct {
		TimetabledTime string `xml:"TimetabledTime"`
		EstimatedTime  string `xml:"EstimatedTime"`
	} `xml:"ServiceDeparture"`
}

type triasService struct {
	OperatingDayRef string `xml:"OperatingDayRef"`
	JourneyRef      string `xml:"JourneyRef"`
	LineRef         string `xml:"LineRef"`
	DirectionRef    string `xml:"DirectionRef"`
	Mode            struct {
		PtMode string    `xml:"PtMode"`
		Name   triasText `xml:"Name"`
	} `xml:"Mode"`
	PublishedLineName triasText `xml:"PublishedLineName"`
	DestinationText   triasText `xml:"DestinationText"`
	Cancelled         string    `xml:"Cancelled"`
}

type triasText struct {
	Text string `xml:"Text"`
}

// DecodeDepartures разбирает TRIAS ответ. Битые записи (нет режима,
// линии или ни одного времени) отбрасываются и считаются в Dropped;
// ошибка только если сам документ не читается.
func DecodeDepartures(body []byte) (*domain.DepartureResult, error) {
	var doc triasResponse
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: trias response: %v", domain.ErrDecode, err)
	}

	payload := doc.ServiceDelivery.DeliveryPayload.StopEventResponse
	result := &domain.DepartureResult{Events: make([]domain.StopEvent, 0, len(payload.StopEventResult))}

	for i, rec := range payload.StopEventResult {
		event, ok := rec.StopEvent.toDomain(i)
		if !ok {
			result.Dropped++
			continue
		}
		result.Events = append(result.Events, event)
	}

	return result, nil
}

func (e triasStopEvent) toDomain(seq int) (domain.StopEvent, bool) {
	svc := e.Service
	call := e.ThisCall.CallAtStop

	mode, err := domain.ParseTransportMode(svc.Mode.PtMode)
	if err != nil {
		return domain.StopEvent{}, false
	}
	lineRef := strings.TrimSpace(svc.LineRef)
	if lineRef == "" {
		return domain.StopEvent{}, false
	}

	timetabled, hasTimetabled := parseTime(call.ServiceDeparture.TimetabledTime)
	estimated, hasEstimated := parseTime(call.ServiceDeparture.EstimatedTime)
	if !hasTimetabled && !hasEstimated {
		return domain.StopEvent{}, false
	}
	if !hasTimetabled {
		timetabled = estimated
	}

	platform := strings.TrimSpace(call.EstimatedBay.Text)
	if platform == "" {
		platform = strings.TrimSpace(call.PlannedBay.Text)
	}

	event := domain.StopEvent{
		Kind:              domain.StopEventKindMonitor,
		Mode:              mode,
		LineRef:           lineRef,
		DirectionRef:      strings.TrimSpace(svc.DirectionRef),
		PublishedLineName: strings.TrimSpace(svc.PublishedLineName.Text),
		DestinationText:   strings.TrimSpace(svc.DestinationText.Text),
		JourneyRef:        strings.TrimSpace(svc.JourneyRef),
		OperatingDayRef:   strings.TrimSpace(svc.OperatingDayRef),
		ThisCall: domain.CallAtStop{
			StopPointRef:   strings.TrimSpace(call.StopPointRef),
			StopPointName:  strings.TrimSpace(call.StopPointName.Text),
			Platform:       platform,
			TimetabledTime: timetabled,
		},
		Cancelled: strings.EqualFold(strings.TrimSpace(svc.Cancelled), "true"),
		Seq:       seq,
	}
	if hasEstimated {
		event.ThisCall.EstimatedTime = &estimated
	}

	return event, true
}

// rapidJSON XML_TRIPSTOPTIMES_REQUEST

type stopSequenceContainer struct {
	Leg *tripLeg `json:"leg" validate:"required"`
}

type tripLeg struct {
	StopSequence []stopSequenceItemWire `json:"stopSequence" validate:"dive"`
}

type stopSequenceItemWire struct {
	ID             string                            `json:"id" validate:"required"`
	Name           string                            `json:"name" validate:"required"`
	Type           string                            `json:"type"`
	Niveau         int                               `json:"niveau"`
	ProductClasses []int                             `json:"productClasses"`
	Properties     domain.StopSequenceItemProperties `json:"properties"`
	Parent         *struct {
		ID string `json:"id"`
	} `json:"parent"`
	ArrivalTimePlanned     string `json:"arrivalTimePlanned"`
	ArrivalTimeEstimated   string `json:"arrivalTimeEstimated"`
	DepartureTimePlanned   string `json:"departureTimePlanned"`
	DepartureTimeEstimated string `json:"departureTimeEstimated"`
}

// DecodeStopSequence разбирает ответ с остановками рейса. Разбор
// атомарный: любая ошибка формы отклоняет весь документ. Отсутствие
// stopSequence в leg - пустая последовательность, не ошибка.
func DecodeStopSequence(body []byte) ([]domain.StopSequenceItem, error) {
	var doc stopSequenceContainer
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: stop sequence: %v", domain.ErrDecode, err)
	}
	if err := validator.Validate(&doc); err != nil {
		return nil, fmt.Errorf("%w: stop sequence: %v", domain.ErrDecode, err)
	}

	items := make([]domain.StopSequenceItem, 0, len(doc.Leg.StopSequence))
	for i, w := range doc.Leg.StopSequence {
		item, err := w.toDomain()
		if err != nil {
			return nil, fmt.Errorf("%w: stop sequence item %d: %v", domain.ErrDecode, i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func (w stopSequenceItemWire) toDomain() (domain.StopSequenceItem, error) {
	item := domain.StopSequenceItem{
		ID:             w.ID,
		Name:           w.Name,
		Type:           w.Type,
		Niveau:         w.Niveau,
		ProductClasses: w.ProductClasses,
		Properties:     w.Properties,
	}
	if w.Parent != nil {
		item.ParentID = w.Parent.ID
	}

	fields := []struct {
		raw string
		dst **time.Time
	}{
		{w.ArrivalTimePlanned, &item.ArrivalTimePlanned},
		{w.ArrivalTimeEstimated, &item.ArrivalTimeEstimated},
		{w.DepartureTimePlanned, &item.DepartureTimePlanned},
		{w.DepartureTimeEstimated, &item.DepartureTimeEstimated},
	}
	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, f.raw)
		if err != nil {
			return domain.StopSequenceItem{}, err
		}
		*f.dst = &t
	}
	return item, nil
}

// rapidJSON XML_DM_REQUEST

type departureMonitorWire struct {
	StopEvents []json.RawMessage `json:"stopEvents"`
}

type stopEventWire struct {
	Location *struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		Type       string `json:"type"`
		Properties struct {
			Platform string `json:"platform"`
			StopID   string `json:"stopId"`
		} `json:"properties"`
	} `json:"location"`
	DepartureTimePlanned   string   `json:"departureTimePlanned"`
	DepartureTimeEstimated string   `json:"departureTimeEstimated"`
	RealtimeStatus         []string `json:"realtimeStatus"`
	IsCancelled            bool     `json:"isCancelled"`
	Transportation         *struct {
		ID          string         `json:"id"`
		Name        string         `json:"name"`
		Number      string         `json:"number"`
		Product     domain.Product `json:"product"`
		Destination domain.Place   `json:"destination"`
		Properties  struct {
			TripCode *int   `json:"tripCode"`
			GlobalID string `json:"globalId"`
		} `json:"properties"`
	} `json:"transportation"`
	Infos []domain.Info `json:"infos"`
}

// DecodeDepartureMonitor разбирает rapidJSON табло. Каждая запись
// декодируется отдельно, битые отбрасываются как и в TRIAS.
func DecodeDepartureMonitor(body []byte) (*domain.DepartureResult, error) {
	var doc departureMonitorWire
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: departure monitor: %v", domain.ErrDecode, err)
	}

	result := &domain.DepartureResult{Events: make([]domain.StopEvent, 0, len(doc.StopEvents))}
	for i, raw := range doc.StopEvents {
		var w stopEventWire
		if err := json.Unmarshal(raw, &w); err != nil {
			result.Dropped++
			continue
		}
		event, ok := w.toDomain(i)
		if !ok {
			result.Dropped++
			continue
		}
		result.Events = append(result.Events, event)
	}
	return result, nil
}

func (w stopEventWire) toDomain(seq int) (domain.StopEvent, bool) {
	if w.Transportation == nil || w.Transportation.ID == "" {
		return domain.StopEvent{}, false
	}

	planned, hasPlanned := parseTime(w.DepartureTimePlanned)
	estimated, hasEstimated := parseTime(w.DepartureTimeEstimated)
	if !hasPlanned && !hasEstimated {
		return domain.StopEvent{}, false
	}
	if !hasPlanned {
		planned = estimated
	}

	tr := w.Transportation
	transportation := &domain.Transportation{
		ID:          tr.ID,
		Name:        tr.Name,
		Number:      tr.Number,
		Product:     tr.Product,
		Destination: tr.Destination,
		TripCode:    tr.Properties.TripCode,
		GlobalID:    tr.Properties.GlobalID,
	}

	event := domain.StopEvent{
		Kind:              domain.StopEventKindTrip,
		Mode:              domain.ModeFromProductClass(tr.Product.Class),
		LineRef:           transportation.LineRef(),
		PublishedLineName: tr.Number,
		DestinationText:   tr.Destination.Name,
		ThisCall: domain.CallAtStop{
			TimetabledTime: planned,
		},
		Cancelled:      w.IsCancelled || containsFold(w.RealtimeStatus, "TRIP_CANCELLED"),
		Infos:          w.Infos,
		Transportation: transportation,
		Seq:            seq,
	}
	if hasEstimated {
		event.ThisCall.EstimatedTime = &estimated
	}
	if w.Location != nil {
		event.Location = &domain.Place{ID: w.Location.ID, Name: w.Location.Name, Type: w.Location.Type}
		event.ThisCall.StopPointRef = w.Location.ID
		event.ThisCall.StopPointName = w.Location.Name
		event.ThisCall.Platform = w.Location.Properties.Platform
	}

	return event, true
}

// parseTime - пустое или нечитаемое значение считается отсутствующим
func parseTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(v, target) {
			return true
		}
	}
	return false
}
