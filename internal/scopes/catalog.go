package scopes

import (
	"errors"
	"strings"
)

var (
	ErrEmptyScope   = errors.New("empty scope")
	ErrInvalidScope = errors.New("invalid scope for this vehicle")
)

// Статический каталог: scope → категория. Конфигурация политик на стороне
// ledger оперирует теми же именами, поэтому каталог меняется только вместе
// с контрактом.
var categories = map[string][]string{
	"basic_operations":  {"engine_start", "engine_stop", "door_lock", "door_unlock", "trunk_access", "horn_control", "light_control"},
	"climate":           {"climate_control", "temperature_set", "ac_control", "heater_control", "defrost_control", "fan_control"},
	"vehicle_status":    {"battery_status", "fuel_status", "tire_pressure", "oil_status", "diagnostic_basic", "diagnostic_full"},
	"location":          {"location_access", "location_history", "geofence_set", "route_planning", "navigation_control"},
	"connectivity":      {"ota_update", "wifi_control", "bluetooth_control", "mobile_app_sync"},
	"safety":            {"alarm_control", "emergency_call", "crash_detection", "theft_alert", "valet_mode"},
	"driver_assistance": {"parking_assist", "lane_control", "cruise_control", "speed_limit", "driver_assist_settings"},
	"entertainment":     {"media_control", "audio_settings", "display_settings", "passenger_entertainment"},
	"preferences":       {"seat_control", "mirror_control", "profile_management", "driving_mode"},
	"maintenance":       {"service_schedule", "maintenance_history", "repair_status", "recall_info"},
	"data":              {"telemetry_basic", "telemetry_advanced", "usage_statistics", "efficiency_metrics"},
}

// byScope — обратный индекс, строится один раз при загрузке пакета.
var byScope = func() map[string]string {
	m := make(map[string]string)
	for cat, list := range categories {
		for _, s := range list {
			m[s] = cat
		}
	}
	return m
}()

// Category возвращает категорию scope; ok=false — scope каталогу не известен.
func Category(scope string) (string, bool) {
	cat, ok := byScope[scope]
	return cat, ok
}

// Split разбирает space-separated список scope (формат wire-протокола).
func Split(s string) []string {
	return strings.Fields(s)
}

// Validate проверяет запрошенный набор scope против разрешённого:
//  1. requested ⊆ allowed;
//  2. каждый scope из requested имеет известную категорию;
//  3. категории requested ⊆ категории allowed.
//
// Неизвестный scope в allowed тоже даёт отказ (категория nil попадает в
// requested-множество через allowed-сторону) — поведение каталога едино
// для обеих сторон, чтобы кривая запись в credential не открывала доступ.
func Validate(requested, allowed string) error {
	req := Split(requested)
	all := Split(allowed)
	if len(req) == 0 || len(all) == 0 {
		return ErrEmptyScope
	}

	allowedSet := make(map[string]struct{}, len(all))
	allowedCats := make(map[string]struct{}, len(all))
	for _, s := range all {
		allowedSet[s] = struct{}{}
		cat, ok := Category(s)
		if !ok {
			// allowed содержит scope вне каталога — конфигурация подозрительна,
			// отказываем целиком
			return ErrInvalidScope
		}
		allowedCats[cat] = struct{}{}
	}

	for _, s := range req {
		if _, ok := allowedSet[s]; !ok {
			return ErrInvalidScope
		}
		cat, ok := Category(s)
		if !ok {
			return ErrInvalidScope
		}
		if _, ok := allowedCats[cat]; !ok {
			return ErrInvalidScope
		}
	}
	return nil
}
