package markup

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

// Policy returns the shared sanitising policy: bluemonday's UGC rules plus the video
// embed wrapper and iframes pointing at the supported players.
func Policy() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		p.RequireNoFollowOnLinks(false)
		p.AllowElements("iframe")
		p.AllowAttrs("class", "data-video-embed", "data-video-platform", "data-video-source").OnElements("div")
		p.AllowAttrs("src").Matching(embedSrcPattern).OnElements("iframe")
		p.AllowAttrs("title", "allow", "allowfullscreen", "frameborder", "loading", "referrerpolicy").OnElements("iframe")
		policy = p
	})
	return policy
}

// SanitizeHTML strips anything the policy does not allow from stored rich text.
func SanitizeHTML(html string) string {
	if html == "" {
		return ""
	}
	return Policy().Sanitize(html)
}
