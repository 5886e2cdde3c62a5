/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"strings"
)

const (
	// DefaultEntityClass names the generic document.Document.
	DefaultEntityClass = "docstore/document.Document"

	// DefaultAppNamespace is the namespace bare class names resolve into.
	DefaultAppNamespace = "App"

	// DocumentNamespace is appended to an application or plugin namespace.
	DocumentNamespace = "Model/Document"
)

// SplitPluginName splits "Plugin.Name" notation. Names without a dot return
// an empty plugin.
func SplitPluginName(name string) (plugin, class string) {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}

// ClassName returns the qualified class a requested name resolves to:
// "TestUser" → "App/Model/Document/TestUser" and
// "MyPlugin.SuperUser" → "MyPlugin/Model/Document/SuperUser".
// Names that already contain a "/" are taken as qualified.
func ClassName(appNamespace, name string) string {
	if strings.Contains(name, "/") {
		return name
	}
	if appNamespace == "" {
		appNamespace = DefaultAppNamespace
	}
	plugin, class := SplitPluginName(name)
	if plugin != "" {
		return plugin + "/" + DocumentNamespace + "/" + class
	}
	return appNamespace + "/" + DocumentNamespace + "/" + class
}
