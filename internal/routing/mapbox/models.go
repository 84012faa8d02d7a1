package mapbox

// directionsResponse is the Mapbox Directions v5 response.
type directionsResponse struct {
	Code    string        `json:"code"`
	Message string        `json:"message,omitempty"`
	Routes  []mapboxRoute `json:"routes"`
	UUID    string        `json:"uuid,omitempty"`
}

type mapboxRoute struct {
	Geometry   string      `json:"geometry"`
	Distance   float64     `json:"distance"`
	Duration   float64     `json:"duration"`
	WeightName string      `json:"weight_name,omitempty"`
	Legs       []mapboxLeg `json:"legs"`
}

type mapboxLeg struct {
	Summary  string       `json:"summary,omitempty"`
	Distance float64      `json:"distance"`
	Duration float64      `json:"duration"`
	Steps    []mapboxStep `json:"steps"`
}

type mapboxStep struct {
	Distance float64  `json:"distance"`
	Duration float64  `json:"duration"`
	Name     string   `json:"name,omitempty"`
	Maneuver maneuver `json:"maneuver"`
}

type maneuver struct {
	Type        string    `json:"type"`
	Instruction string    `json:"instruction"`
	Location    []float64 `json:"location,omitempty"`
}

// Response codes that mean no route exists.
const (
	codeOK        = "Ok"
	codeNoRoute   = "NoRoute"
	codeNoSegment = "NoSegment"
)
