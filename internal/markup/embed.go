package markup

import (
	"fmt"
	htmlstd "html"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var (
	embedLinePattern = regexp.MustCompile(`^\s*<?((?:https?://)?[^\s<>]+)>?\s*$`)
	embedSrcPattern  = regexp.MustCompile(`^https://(?:www\.youtube-nocookie\.com/embed/|player\.vimeo\.com/video/)`)
	embedTimePattern = regexp.MustCompile(`(?i)(\d+)(h|m|s)`)
	listIndexPattern = regexp.MustCompile(`^\d+\.\s+`)
)

type videoEmbed struct {
	Platform string
	Source   string
	EmbedURL string
}

// expandVideoEmbeds replaces lines holding nothing but a YouTube or Vimeo link with an
// iframe block. Fenced and indented code, quotes and list items are left alone.
func expandVideoEmbeds(text string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}

	lines := strings.Split(text, "\n")
	fence := ""

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if marker := fenceMarker(trimmed); marker != "" {
			switch {
			case fence == "":
				fence = marker
			case strings.HasPrefix(trimmed, fence):
				fence = ""
			}
			continue
		}
		if fence != "" || isIndentedCode(line) || skipEmbedLine(trimmed) {
			continue
		}

		match := embedLinePattern.FindStringSubmatch(trimmed)
		if match == nil {
			continue
		}
		embed, ok := parseVideoURL(match[1])
		if !ok {
			continue
		}
		lines[i] = embed.html()
	}

	return strings.Join(lines, "\n")
}

func fenceMarker(line string) string {
	switch {
	case strings.HasPrefix(line, "```"):
		return "```"
	case strings.HasPrefix(line, "~~~"):
		return "~~~"
	}
	return ""
}

func isIndentedCode(line string) bool {
	return strings.HasPrefix(line, "    ") || strings.HasPrefix(line, "\t")
}

func skipEmbedLine(line string) bool {
	if line == "" || strings.HasPrefix(line, ">") {
		return true
	}
	if strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ") || strings.HasPrefix(line, "+ ") {
		return true
	}
	return listIndexPattern.MatchString(line)
}

func parseVideoURL(raw string) (videoEmbed, bool) {
	value := strings.TrimSpace(raw)
	lower := strings.ToLower(value)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		for _, prefix := range []string{"youtube.com/", "www.youtube.com/", "youtu.be/", "vimeo.com/", "www.vimeo.com/"} {
			if strings.HasPrefix(lower, prefix) {
				value = "https://" + value
				break
			}
		}
	}

	parsed, err := url.Parse(value)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return videoEmbed{}, false
	}

	if embed, ok := youTubeEmbed(parsed, value); ok {
		return embed, true
	}
	return vimeoEmbed(parsed, value)
}

func youTubeEmbed(u *url.URL, source string) (videoEmbed, bool) {
	host := strings.ToLower(u.Hostname())
	path := strings.Trim(u.Path, "/")

	var id string
	switch {
	case host == "youtu.be":
		id = path
	case isHostOrSubdomain(host, "youtube.com"):
		switch {
		case path == "watch":
			id = u.Query().Get("v")
		case strings.HasPrefix(path, "shorts/"):
			id = strings.TrimPrefix(path, "shorts/")
		case strings.HasPrefix(path, "embed/"):
			id = strings.TrimPrefix(path, "embed/")
		case strings.HasPrefix(path, "live/"):
			id = strings.TrimPrefix(path, "live/")
		}
	default:
		return videoEmbed{}, false
	}
	id, _, _ = strings.Cut(id, "/")
	if id == "" {
		return videoEmbed{}, false
	}

	values := url.Values{}
	values.Set("rel", "0")
	values.Set("playsinline", "1")
	if start := startSeconds(u); start > 0 {
		values.Set("start", strconv.Itoa(start))
	}

	return videoEmbed{
		Platform: "youtube",
		Source:   source,
		EmbedURL: "https://www.youtube-nocookie.com/embed/" + url.PathEscape(id) + "?" + values.Encode(),
	}, true
}

func vimeoEmbed(u *url.URL, source string) (videoEmbed, bool) {
	host := strings.ToLower(u.Hostname())
	if !isHostOrSubdomain(host, "vimeo.com") {
		return videoEmbed{}, false
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	id := ""
	for _, segment := range segments {
		if onlyDigits(segment) {
			id = segment
		}
	}
	if id == "" {
		return videoEmbed{}, false
	}

	return videoEmbed{
		Platform: "vimeo",
		Source:   source,
		EmbedURL: "https://player.vimeo.com/video/" + id + "?dnt=1",
	}, true
}

// startSeconds reads t= / start= in either plain seconds or 1h2m3s form.
func startSeconds(u *url.URL) int {
	raw := u.Query().Get("start")
	if raw == "" {
		raw = u.Query().Get("t")
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if onlyDigits(raw) {
		seconds, _ := strconv.Atoi(raw)
		return seconds
	}

	total := 0
	for _, match := range embedTimePattern.FindAllStringSubmatch(raw, -1) {
		value, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		switch strings.ToLower(match[2]) {
		case "h":
			total += value * 3600
		case "m":
			total += value * 60
		case "s":
			total += value
		}
	}
	return total
}

func (e videoEmbed) html() string {
	title := "Video player"
	switch e.Platform {
	case "youtube":
		title = "YouTube video player"
	case "vimeo":
		title = "Vimeo video player"
	}
	return fmt.Sprintf(
		`<div class="video-embed" data-video-embed="true" data-video-platform="%s" data-video-source="%s">`+
			`<iframe src="%s" title="%s" loading="lazy" allow="encrypted-media; picture-in-picture; fullscreen" allowfullscreen frameborder="0" referrerpolicy="strict-origin-when-cross-origin"></iframe>`+
			`</div>`,
		htmlstd.EscapeString(e.Platform),
		htmlstd.EscapeString(e.Source),
		htmlstd.EscapeString(e.EmbedURL),
		title,
	)
}

func onlyDigits(value string) bool {
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return value != ""
}

func isHostOrSubdomain(host, domain string) bool {
	host = strings.ToLower(strings.TrimSpace(host))
	return host == domain || strings.HasSuffix(host, "."+domain)
}
