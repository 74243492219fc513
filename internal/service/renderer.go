// internal/service/renderer.go
package service

import (
	"strings"

	"github.com/unclebandit/outreach-backend/internal/model"
)

// Render substitutes placeholders in a body template. Recipient fields use
// {field}, sender fields use {my_field}. Placeholders with no matching
// field are left verbatim. When appendSignature is set, the sender's
// signature is joined after a separator block.
func Render(template string, recipient, sender map[string]string, appendSignature bool) string {
	result := template
	for k, v := range recipient {
		result = strings.ReplaceAll(result, "{"+k+"}", v)
	}
	for k, v := range sender {
		result = strings.ReplaceAll(result, "{my_"+k+"}", v)
	}
	if appendSignature {
		result = result + "\n\n--\n" + sender["signature"]
	}
	return result
}

// RecipientFields flattens a recipient snapshot into the renderer's field
// map. A nil snapshot (profile missing at schedule time) yields an empty
// map, leaving every recipient placeholder verbatim.
func RecipientFields(s *model.RecipientSnapshot) map[string]string {
	if s == nil {
		return map[string]string{}
	}
	return map[string]string{
		"name":       s.Name,
		"email":      s.Email,
		"title":      s.Title,
		"profession": s.Profession,
	}
}

// SenderFields flattens the campaign's sender snapshot.
func SenderFields(s model.SenderSnapshot) map[string]string {
	return map[string]string{
		"name":         s.Name,
		"email":        s.Email,
		"title":        s.Title,
		"profession":   s.Profession,
		"signature":    s.Signature,
		"social_links": s.SocialLinks,
	}
}
