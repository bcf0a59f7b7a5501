package sync

// StageMappingConfigKey is the configuration-table key holding the
// persisted stage mapping override set as a JSON object
const StageMappingConfigKey = "deal_stage_to_order_status_mapping"

// defaultStageMapping maps CRM pipeline stages to commerce order statuses.
// Stages absent from the map are intentionally outside the order-status
// lifecycle and produce no status update.
var defaultStageMapping = map[string]string{
	"qualifiedtobuy":        "Pending",
	"presentationscheduled": "Awaiting Payment",
	"decisionmakerboughtin": "Awaiting Fulfillment",
	"contractsent":          "Awaiting Shipment",
	"closedwon":             "Shipped",
	"closedlost":            "Cancelled",
}

// DefaultStageMapping returns a copy of the built-in stage mapping
func DefaultStageMapping() map[string]string {
	mapping := make(map[string]string, len(defaultStageMapping))
	for stage, status := range defaultStageMapping {
		mapping[stage] = status
	}
	return mapping
}

// EffectiveStageMapping overlays overrides on the built-in defaults.
// Overrides win key-by-key; defaults not mentioned in the override set
// are preserved.
func EffectiveStageMapping(overrides map[string]string) map[string]string {
	mapping := DefaultStageMapping()
	for stage, status := range overrides {
		mapping[stage] = status
	}
	return mapping
}
