package telemetry

// Span attribute keys.
const (
	AttrSessionID = "bboxmap.session_id"
	AttrResult    = "bboxmap.validation_result"
	AttrFeatures  = "bboxmap.feature_count"
)
