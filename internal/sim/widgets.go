package sim

import (
	"strings"

	"github.com/xiaot623/autopilot/internal/domain"
)

// Widgets is an in-memory widget surface. It implements driver.WidgetSurface.
type Widgets struct {
	widgets map[string]domain.WidgetInfo
	clicks  map[string]int
}

// NewWidgets creates an empty widget surface.
func NewWidgets() *Widgets {
	return &Widgets{
		widgets: make(map[string]domain.WidgetInfo),
		clicks:  make(map[string]int),
	}
}

// Add registers or replaces a widget. Found is forced on.
func (w *Widgets) Add(info domain.WidgetInfo) {
	info.Found = true
	w.widgets[info.Name] = info
}

// Remove drops a widget by name.
func (w *Widgets) Remove(name string) {
	delete(w.widgets, name)
}

// FindWidget resolves a query. Name matches exactly; class and text match on
// substring, mirroring the host-side widget inspection behavior.
func (w *Widgets) FindWidget(query domain.WidgetQuery) domain.WidgetInfo {
	switch query.QueryType {
	case domain.WidgetQueryByClass:
		for _, info := range w.widgets {
			if strings.Contains(info.Class, query.ClassName) {
				return info
			}
		}
	case domain.WidgetQueryByText:
		for _, info := range w.widgets {
			if strings.Contains(info.Text, query.Text) {
				return info
			}
		}
	default:
		if info, ok := w.widgets[query.Name]; ok {
			return info
		}
	}
	return domain.WidgetInfo{}
}

// Click records a click on a visible, enabled widget.
func (w *Widgets) Click(widgetName string, params domain.ClickParams) bool {
	info, ok := w.widgets[widgetName]
	if !ok || !info.Visible || !info.Enabled {
		return false
	}
	count := params.ClickCount
	if count <= 0 {
		count = 1
	}
	w.clicks[widgetName] += count
	return true
}

// Clicks returns how many clicks a widget has received.
func (w *Widgets) Clicks(name string) int { return w.clicks[name] }
