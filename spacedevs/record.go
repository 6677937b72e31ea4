package spacedevs

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/remix-astronautics/shockwave/domain"
	"github.com/tidwall/gjson"
)

// maxRemarks is the number of characters of the mission description kept as remarks.
const maxRemarks = 500

// MapStatus returns the local status name for an API status name or abbreviation.
// Anything unknown becomes Scheduled.
func MapStatus(name string) string {
	switch name {
	case "Go for Launch", "Go":
		return domain.StatusGo
	case "Success", "Launch Successful":
		return domain.StatusSuccess
	case "Failure", "Launch Failure":
		return domain.StatusFailure
	case "Partial Failure", "Launch was a Partial Failure":
		return domain.StatusPartialFailure
	case "In Flight", "Launch in Flight":
		return domain.StatusInFlight
	case "Hold", "On Hold":
		return domain.StatusHold
	}
	return domain.StatusScheduled
}

// outcome returns the tri-state success flag for a local status name.
func outcome(status string) *bool {
	var success bool
	switch status {
	case domain.StatusSuccess:
		success = true
	case domain.StatusFailure, domain.StatusPartialFailure:
		success = false
	default:
		return nil
	}
	return &success
}

// ParseLaunch maps one launch record of a detailed listing to a SyncedLaunch.
// Records without an id or with an unparseable NET fail with ErrMalformedRecord.
func ParseLaunch(record gjson.Result) (*domain.SyncedLaunch, error) {
	externalID := strings.TrimSpace(record.Get("id").String())
	if externalID == "" {
		return nil, fmt.Errorf("%w: missing id (%s)", ErrMalformedRecord, orDefault(record.Get("name").String(), "unnamed"))
	}

	net, err := time.Parse(time.RFC3339, record.Get("net").String())
	if err != nil {
		return nil, fmt.Errorf("%w: launch %s has net %q", ErrMalformedRecord, externalID, record.Get("net").String())
	}
	net = net.UTC()

	status := MapStatus(record.Get("status.name").String())
	if abbrev := record.Get("status.abbrev").String(); status == domain.StatusScheduled && abbrev != "" {
		status = MapStatus(abbrev)
	}

	launch := &domain.SyncedLaunch{
		ExternalID:  externalID,
		LaunchDate:  net.Format("2006-01-02"),
		LaunchTime:  net.Format("15:04:05"),
		WindowStart: parseTime(record.Get("window_start")),
		WindowEnd:   parseTime(record.Get("window_end")),
		MissionName: orDefault(record.Get("name").String(), "Unknown Mission"),
		PayloadName: record.Get("mission.name").String(),
		OrbitType:   orDefault(record.Get("mission.orbit.abbrev").String(), record.Get("mission.orbit.name").String()),
		StatusName:  status,
		Success:     outcome(status),
		Remarks:     truncate(strings.TrimSpace(record.Get("mission.description").String()), maxRemarks),
		SourceURL:   record.Get("url").String(),
		Site:        parsePad(record.Get("pad")),
		Rocket:      parseConfiguration(record.Get("rocket.configuration")),
	}
	return launch, nil
}

// parsePad maps the pad object of a launch record to a launch site.
func parsePad(pad gjson.Result) domain.LaunchSite {
	location := pad.Get("location")

	return domain.LaunchSite{
		Location:   orDefault(location.Get("name").String(), "Unknown"),
		LaunchPad:  orDefault(pad.Get("name").String(), "Unknown"),
		Latitude:   firstFloat(pad.Get("latitude"), location.Get("latitude")),
		Longitude:  firstFloat(pad.Get("longitude"), location.Get("longitude")),
		Country:    orDefault(location.Get("country_code").String(), pad.Get("country_code").String()),
		ExternalID: pad.Get("id").String(),
	}
}

// parseConfiguration maps the rocket configuration object of a launch record to a rocket.
func parseConfiguration(config gjson.Result) domain.Rocket {
	return domain.Rocket{
		Name:         orDefault(config.Get("full_name").String(), orDefault(config.Get("name").String(), "Unknown")),
		Family:       config.Get("family").String(),
		Variant:      config.Get("variant").String(),
		Manufacturer: config.Get("manufacturer.name").String(),
		Country:      config.Get("manufacturer.country_code").String(),
		ExternalID:   config.Get("id").String(),
	}
}

// parseLauncher maps a launcher configuration detail document to a rocket.
func parseLauncher(doc gjson.Result, id string) *domain.Rocket {
	rocket := parseConfiguration(doc)
	rocket.ExternalID = orDefault(rocket.ExternalID, id)
	rocket.AltName = doc.Get("alias").String()
	rocket.PayloadLEO = firstFloat(doc.Get("leo_capacity"))
	rocket.PayloadGTO = firstFloat(doc.Get("gto_capacity"))
	rocket.Height = firstFloat(doc.Get("length"))
	rocket.Diameter = firstFloat(doc.Get("diameter"))
	rocket.Mass = firstFloat(doc.Get("launch_mass"))

	if stages := doc.Get("max_stage"); stages.Exists() && stages.Type == gjson.Number {
		n := int(stages.Int())
		rocket.Stages = &n
	}
	return &rocket
}

// parseTime parses an optional RFC 3339 timestamp.
func parseTime(value gjson.Result) *time.Time {
	if value.String() == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, value.String())
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}

// firstFloat returns the first value that holds a number. The API sends some coordinates as strings.
func firstFloat(values ...gjson.Result) *float64 {
	for _, value := range values {
		switch value.Type {
		case gjson.Number:
			f := value.Float()
			return &f
		case gjson.String:
			if f, err := strconv.ParseFloat(strings.TrimSpace(value.String()), 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
