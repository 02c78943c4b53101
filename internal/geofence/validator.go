// Package geofence decides whether a claimed location reading is acceptable
// for a location's registered geofence under the effective policy.
package geofence

import (
	"github.com/kozaktomas/attendance-gate/internal/policy"
)

// Reason explains a location validation result. "Too far" and "no data
// submitted" are deliberately distinct so callers can render actionable
// messages.
type Reason string

const (
	ReasonOK                 Reason = "ok"
	ReasonOutsideRadius      Reason = "outside_radius"
	ReasonWifiMismatch       Reason = "wifi_mismatch"
	ReasonMissingSignal      Reason = "missing_signal"
	ReasonNoSignalConfigured Reason = "no_signal_configured"
)

// Geofence is a location's registered verification area: a center plus
// radius, an optional WiFi network identity, or both.
type Geofence struct {
	LocationID   string
	Latitude     *float64
	Longitude    *float64
	RadiusMeters float64
	WifiSSID     string
}

// HasCoordinates reports whether the fence can verify by GPS distance.
func (g Geofence) HasCoordinates() bool {
	return g.Latitude != nil && g.Longitude != nil && g.RadiusMeters > 0
}

// HasWifi reports whether the fence can verify by WiFi identity.
func (g Geofence) HasWifi() bool {
	return g.WifiSSID != ""
}

// Claim is the location evidence supplied by the client for one attempt.
type Claim struct {
	Latitude  *float64
	Longitude *float64
	WifiSSID  string
}

// Result is the outcome of validating a claim against a geofence.
// DistanceMeters and WifiMatched are nil when the corresponding signal was
// not evaluated (not configured or not supplied).
type Result struct {
	Passed         bool
	DistanceMeters *float64
	WifiMatched    *bool
	Reason         Reason
}

// Validate evaluates a claim against a fence for the given signal
// requirement. WiFi comparison is an exact, case-sensitive identity match;
// any normalization is the caller's concern.
func Validate(claim Claim, fence Geofence, required policy.SignalRequirement) Result {
	res := Result{Reason: ReasonOK}

	gpsEvaluated := false
	gpsPassed := false
	if fence.HasCoordinates() && claim.Latitude != nil && claim.Longitude != nil {
		d := HaversineMeters(*claim.Latitude, *claim.Longitude, *fence.Latitude, *fence.Longitude)
		res.DistanceMeters = &d
		gpsEvaluated = true
		gpsPassed = d <= fence.RadiusMeters
	}

	wifiEvaluated := false
	wifiPassed := false
	if fence.HasWifi() && claim.WifiSSID != "" {
		matched := claim.WifiSSID == fence.WifiSSID
		res.WifiMatched = &matched
		wifiEvaluated = true
		wifiPassed = matched
	}

	// A location with neither signal configured cannot geofence-verify.
	if !fence.HasCoordinates() && !fence.HasWifi() {
		res.Reason = ReasonNoSignalConfigured
		res.Passed = required == policy.RequireFaceOnly
		return res
	}

	switch required {
	case policy.RequireFaceOnly:
		// Location is advisory only.
		res.Passed = true

	case policy.RequireGPS:
		res.Passed, res.Reason = verdict(fence.HasCoordinates(), gpsEvaluated, gpsPassed, ReasonOutsideRadius)

	case policy.RequireWifi:
		res.Passed, res.Reason = verdict(fence.HasWifi(), wifiEvaluated, wifiPassed, ReasonWifiMismatch)

	case policy.RequireGPSAndWifi:
		gpsOK, gpsReason := verdict(fence.HasCoordinates(), gpsEvaluated, gpsPassed, ReasonOutsideRadius)
		wifiOK, wifiReason := verdict(fence.HasWifi(), wifiEvaluated, wifiPassed, ReasonWifiMismatch)
		res.Passed = gpsOK && wifiOK
		if !gpsOK {
			res.Reason = gpsReason
		} else if !wifiOK {
			res.Reason = wifiReason
		}

	case policy.RequireGPSOrWifi:
		gpsOK, gpsReason := verdict(fence.HasCoordinates(), gpsEvaluated, gpsPassed, ReasonOutsideRadius)
		wifiOK, _ := verdict(fence.HasWifi(), wifiEvaluated, wifiPassed, ReasonWifiMismatch)
		res.Passed = gpsOK || wifiOK
		if !res.Passed {
			if !gpsEvaluated && !wifiEvaluated {
				res.Reason = ReasonMissingSignal
			} else if gpsEvaluated {
				res.Reason = gpsReason
			} else {
				res.Reason = ReasonWifiMismatch
			}
		}

	default:
		// Unknown requirement never passes silently.
		res.Passed = false
		res.Reason = ReasonMissingSignal
	}

	return res
}

// verdict resolves one signal: a signal the fence does not support reads as
// not configured, a supported signal the claim did not supply reads as
// missing, otherwise the evaluated pass/fail stands.
func verdict(configured, evaluated, passed bool, failReason Reason) (bool, Reason) {
	if !configured {
		return false, ReasonNoSignalConfigured
	}
	if !evaluated {
		return false, ReasonMissingSignal
	}
	if !passed {
		return false, failReason
	}
	return true, ReasonOK
}
