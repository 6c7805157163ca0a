package domain

// CommandResult is the outcome of a driver command.
type CommandResult struct {
	Status      CommandStatus `json:"status"`
	Message     string        `json:"message"`
	ElapsedTime float64       `json:"elapsed_time"`
}

// IsSuccess reports whether the command finished successfully.
func (r CommandResult) IsSuccess() bool { return r.Status == CommandStatusSuccess }

// IsRunning reports whether the command is still in flight.
func (r CommandResult) IsRunning() bool { return r.Status == CommandStatusRunning }

// IsFailed reports whether the command failed.
func (r CommandResult) IsFailed() bool { return r.Status == CommandStatusFailed }

// MoveParams configures a movement command.
type MoveParams struct {
	AcceptanceRadius float64      `json:"acceptanceRadius"`
	SpeedMultiplier  float64      `json:"speedMultiplier"`
	ShouldSprint     bool         `json:"shouldSprint"`
	MovementMode     MovementMode `json:"movementMode"`
	Timeout          float64      `json:"timeout,omitempty"`
}

// DefaultMoveParams returns the stock movement parameters.
func DefaultMoveParams() MoveParams {
	return MoveParams{
		AcceptanceRadius: 50.0,
		SpeedMultiplier:  1.0,
		MovementMode:     MovementModeNavigation,
	}
}

// RotateParams configures a rotation command.
type RotateParams struct {
	RotationSpeed   float64 `json:"rotationSpeed"`
	AcceptanceAngle float64 `json:"acceptanceAngle"`
	Timeout         float64 `json:"timeout,omitempty"`
}

// DefaultRotateParams returns the stock rotation parameters.
func DefaultRotateParams() RotateParams {
	return RotateParams{
		RotationSpeed:   180.0,
		AcceptanceAngle: 5.0,
	}
}

// InputParams configures a synthetic input press.
type InputParams struct {
	ActionName string  `json:"actionName"`
	Value      float64 `json:"value"`
	Duration   float64 `json:"duration"`
}

// ClickParams configures a synthetic widget click.
type ClickParams struct {
	ClickType  ClickType `json:"clickType"`
	ClickCount int       `json:"clickCount"`
}

// DefaultClickParams returns a single left click.
func DefaultClickParams() ClickParams {
	return ClickParams{ClickType: ClickTypeLeft, ClickCount: 1}
}

// WidgetQueryType selects how a widget query matches widgets.
type WidgetQueryType string

const (
	WidgetQueryByName  WidgetQueryType = "by_name"
	WidgetQueryByClass WidgetQueryType = "by_class"
	WidgetQueryByText  WidgetQueryType = "by_text"
)

// WidgetQuery selects a widget by name, class or text content.
type WidgetQuery struct {
	QueryType WidgetQueryType `json:"queryType"`
	Name      string          `json:"name,omitempty"`
	ClassName string          `json:"className,omitempty"`
	Text      string          `json:"text,omitempty"`
}

// WidgetQueryByWidgetName builds a by-name widget query.
func WidgetQueryByWidgetName(name string) WidgetQuery {
	return WidgetQuery{QueryType: WidgetQueryByName, Name: name}
}

// Describe returns a short human-readable form of the query for log messages.
func (q WidgetQuery) Describe() string {
	switch q.QueryType {
	case WidgetQueryByClass:
		return "class " + q.ClassName
	case WidgetQueryByText:
		return "text " + q.Text
	default:
		return "widget " + q.Name
	}
}

// WidgetInfo describes a widget found by the UI inspection collaborator.
type WidgetInfo struct {
	Found    bool    `json:"found"`
	Name     string  `json:"name"`
	Class    string  `json:"class"`
	Position Vector  `json:"position"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Visible  bool    `json:"visible"`
	Enabled  bool    `json:"enabled"`
	Text     string  `json:"text"`
}

// IsValid reports whether the query resolved to an actual widget.
func (w WidgetInfo) IsValid() bool { return w.Found }
