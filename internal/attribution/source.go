// Package attribution derives click attributes from request signals. Every
// derivation is total: it always produces a value and never fails.
package attribution

import (
	"strings"

	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/internal/domain"
)

// QRHint is the ?source= value printed into QR codes.
const QRHint = "qr"

type referrerRule struct {
	needles []string
	source  string
}

// referrerRules is matched in order; the first rule with a matching needle wins.
// Matching is a plain substring test on the lower-cased referrer, so
// "https://not-t.co.example" counts as twitter.
var referrerRules = []referrerRule{
	{needles: []string{"twitter.com", "t.co", "x.com"}, source: domain.SourceTwitter},
	{needles: []string{"facebook.com", "fb.me"}, source: domain.SourceFacebook},
	{needles: []string{"google.com"}, source: domain.SourceGoogle},
	{needles: []string{"youtube.com", "youtu.be"}, source: domain.SourceYouTube},
	{needles: []string{"instagram.com"}, source: domain.SourceInstagram},
	{needles: []string{"linkedin.com"}, source: domain.SourceLinkedIn},
	{needles: []string{"tiktok.com"}, source: domain.SourceTikTok},
}

// ClassifySource tags a click from the ?source= hint and the Referer header.
// The qr hint overrides any referrer.
func ClassifySource(hint, referrer string) string {
	if hint == QRHint {
		return domain.SourceQR
	}
	if referrer == "" {
		return domain.SourceDirect
	}

	ref := strings.ToLower(referrer)
	for _, rule := range referrerRules {
		for _, needle := range rule.needles {
			if strings.Contains(ref, needle) {
				return rule.source
			}
		}
	}
	return domain.SourceReferrer
}
