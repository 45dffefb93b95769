package browser

import "github.com/che-incubator/che-plugins/internal/registry"

type action int

const (
	actionFilter action = iota
	actionAddRegistry
	actionChangeRegistry
)

type menuItem struct {
	label    string
	group    string // submenu heading, "" for top level
	action   action
	filter   string
	disabled bool
}

var menuItems = []menuItem{
	{label: "Available plugins", action: actionFilter},
	{label: "Installed plugins", action: actionFilter, filter: registry.FilterInstalled},
	{label: "Editors", action: actionFilter, filter: registry.FilterType + registry.TypeToken("Che Editor")},
	// Built-in plugins are not part of the workspace plugin list.
	{label: "Built-in plugins", disabled: true},
	{label: "Add registry", group: "Other...", action: actionAddRegistry},
	{label: "Change registry", group: "Other...", action: actionChangeRegistry},
}
