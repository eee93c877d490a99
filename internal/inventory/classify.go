package inventory

import "strings"

// Classify reports whether an item is contraband.
//
// Products are always contraband whatever their packaging. Everything else
// follows the definition's legal-status code, and an item without readable
// status metadata is treated as legal.
func Classify(item Item) bool {
	if item == nil {
		return false
	}
	if isProduct(item) {
		return true
	}
	def := item.Definition()
	if def == nil {
		return false
	}
	code, ok := def.LegalStatus()
	if !ok {
		return false
	}
	return code != 0
}

func isProduct(item Item) bool {
	if strings.Contains(strings.ToLower(item.Kind()), "product") {
		return true
	}
	if def := item.Definition(); def != nil && def.IsProduct() {
		return true
	}
	return false
}
