package classify

import (
	"strings"
	"unicode"
)

// appIDRules keys known app identifiers to categories. These are the most
// specific signal and are checked first.
var appIDRules = map[string]Category{
	// Development
	"com.apple.dt.Xcode":      Development,
	"com.microsoft.VSCode":    Development,
	"com.jetbrains.intellij":  Development,
	"com.jetbrains.goland":    Development,
	"com.sublimetext.4":       Development,
	"com.apple.Terminal":      Development,
	"com.googlecode.iterm2":   Development,
	"dev.warp.Warp-Stable":    Development,
	"com.github.GitHubClient": Development,

	// Communication
	"com.tinyspeck.slackmacgap": Communication,
	"com.apple.MobileSMS":       Communication,
	"com.apple.mail":            Communication,
	"us.zoom.xos":               Communication,
	"com.microsoft.teams2":      Communication,
	"com.hnc.Discord":           Communication,
	"net.whatsapp.WhatsApp":     Communication,

	// Productivity
	"com.apple.Notes":             Productivity,
	"com.apple.iCal":              Productivity,
	"com.apple.reminders":         Productivity,
	"com.culturedcode.ThingsMac":  Productivity,
	"com.notion.id":               Productivity,
	"md.obsidian":                 Productivity,
	"com.linear":                  Productivity,
	"com.apple.iWork.Pages":       Productivity,
	"com.apple.iWork.Numbers":     Productivity,
	"com.microsoft.Word":          Productivity,
	"com.microsoft.Excel":         Productivity,

	// Research
	"com.apple.Preview":    Research,
	"com.apple.iBooksX":    Research,
	"net.sourceforge.skim": Research,

	// Entertainment
	"com.spotify.client": Entertainment,
	"com.apple.Music":    Entertainment,
	"com.apple.TV":       Entertainment,
	"org.videolan.vlc":   Entertainment,
	"com.colliderli.iina": Entertainment,

	// Social
	"maccatalyst.com.atebits.Tweetie2": Social,

	// Browsers resolve to Browsing here and are refined by title/text below.
	"com.apple.Safari":             Browsing,
	"com.google.Chrome":            Browsing,
	"org.mozilla.firefox":          Browsing,
	"com.brave.Browser":            Browsing,
	"com.microsoft.edgemac":        Browsing,
	"company.thebrowser.Browser":   Browsing,
	"com.vivaldi.Vivaldi":          Browsing,
	"com.operasoftware.Opera":      Browsing,
}

// nameRule matches a lowercase substring of the app name.
type nameRule struct {
	substr   string
	category Category
}

// appNameRules are checked in order when the identifier is unknown.
var appNameRules = []nameRule{
	{"xcode", Development},
	{"visual studio", Development},
	{"intellij", Development},
	{"goland", Development},
	{"pycharm", Development},
	{"iterm", Development},
	{"terminal", Development},
	{"code", Development},

	{"slack", Communication},
	{"discord", Communication},
	{"zoom", Communication},
	{"teams", Communication},
	{"messages", Communication},
	{"mail", Communication},
	{"whatsapp", Communication},
	{"telegram", Communication},

	{"notion", Productivity},
	{"obsidian", Productivity},
	{"things", Productivity},
	{"reminders", Productivity},
	{"calendar", Productivity},
	{"notes", Productivity},

	{"preview", Research},
	{"books", Research},

	{"spotify", Entertainment},
	{"music", Entertainment},
	{"netflix", Entertainment},
	{"vlc", Entertainment},
	{"twitch", Entertainment},

	{"twitter", Social},
	{"instagram", Social},
	{"facebook", Social},
	{"reddit", Social},

	{"safari", Browsing},
	{"chrome", Browsing},
	{"firefox", Browsing},
	{"brave", Browsing},
	{"edge", Browsing},
	{"opera", Browsing},
	{"vivaldi", Browsing},
	{"arc", Browsing},
}

// titleRule matches a lowercase keyword inside the window title.
type titleRule struct {
	keyword  string
	category Category
}

// windowTitleRules refine browser windows and classify unknown apps by what
// the title says. Checked in order, first match wins.
var windowTitleRules = []titleRule{
	{"github", Development},
	{"gitlab", Development},
	{"stack overflow", Development},
	{"stackoverflow", Development},
	{"pull request", Development},
	{"merge request", Development},
	{"localhost", Development},

	{"wikipedia", Research},
	{"arxiv", Research},
	{"documentation", Research},
	{"docs", Research},
	{"tutorial", Research},
	{"how to", Research},

	{"gmail", Communication},
	{"outlook", Communication},
	{"inbox", Communication},
	{"google meet", Communication},
	{"zoom meeting", Communication},

	{"jira", Productivity},
	{"trello", Productivity},
	{"asana", Productivity},
	{"confluence", Productivity},
	{"notion", Productivity},
	{"google docs", Productivity},
	{"google sheets", Productivity},

	{"youtube", Entertainment},
	{"netflix", Entertainment},
	{"twitch", Entertainment},
	{"now playing", Entertainment},
	{"spotify", Entertainment},

	{"twitter", Social},
	{"reddit", Social},
	{"instagram", Social},
	{"facebook", Social},
	{"linkedin", Social},
	{"hacker news", Social},
}

// textKeywords drive the keyword-density fallback. Hits are counted per
// category over the extracted text's tokens; ties go to the earlier category
// in All() order.
var textKeywords = map[Category][]string{
	Development: {
		"func", "import", "class", "struct", "const", "compile",
		"debug", "error", "git", "commit", "variable", "function", "package",
	},
	Productivity: {
		"task", "todo", "deadline", "project", "schedule", "plan", "meeting notes",
	},
	Research: {
		"study", "research", "paper", "analysis", "theory", "abstract", "figure",
	},
	Communication: {
		"meeting", "reply", "message", "email", "thanks", "regards", "sent",
	},
	Social: {
		"like", "follow", "share", "post", "comment", "retweet",
	},
	Entertainment: {
		"episode", "season", "movie", "watch", "trailer", "playlist", "playing",
	},
}

// minTextWords is the word-count floor below which keyword-density
// classification declines to fire.
const minTextWords = 3

// minKeywordHits is the score a category must reach for keyword-density
// classification to return it.
const minKeywordHits = 2

// Classify maps sample metadata (plus optional extracted text) to a
// category. It is total and deterministic: the same input always yields the
// same category, and anything without a confident signal falls through to
// Other.
func Classify(appName, appID, windowTitle, text string) Category {
	// (1) Identifier rules, most specific first. Browser hits detour
	// through refinement.
	if cat, ok := appIDRules[appID]; ok {
		if cat == Browsing {
			return refineBrowser(windowTitle, text)
		}
		return cat
	}

	// (2) App-name substring rules, same browser detour.
	lowerName := strings.ToLower(appName)
	for _, rule := range appNameRules {
		if strings.Contains(lowerName, rule.substr) {
			if rule.category == Browsing {
				return refineBrowser(windowTitle, text)
			}
			return rule.category
		}
	}

	// (3) Window-title keyword rules.
	if cat, ok := titleCategory(windowTitle); ok {
		return cat
	}

	// (4) Keyword-density scoring over extracted text.
	if cat, ok := textCategory(text); ok {
		return cat
	}

	// (5) Catch-all.
	return Other
}

// refineBrowser tries to say what a browser window was actually for: title
// keywords first, then text keywords, then the generic Browsing category.
// The title-before-text order is deliberate and asymmetric with the
// non-browser path.
func refineBrowser(windowTitle, text string) Category {
	if cat, ok := titleCategory(windowTitle); ok {
		return cat
	}
	if cat, ok := textCategory(text); ok {
		return cat
	}
	return Browsing
}

// titleCategory applies the ordered window-title keyword rules.
func titleCategory(windowTitle string) (Category, bool) {
	title := strings.ToLower(windowTitle)
	if title == "" {
		return Other, false
	}
	for _, rule := range windowTitleRules {
		if strings.Contains(title, rule.keyword) {
			return rule.category, true
		}
	}
	return Other, false
}

// textCategory scores category keyword hits over the extracted text. It
// declines on short text (<= minTextWords words) and when no category
// reaches minKeywordHits.
func textCategory(text string) (Category, bool) {
	if len(strings.Fields(text)) <= minTextWords {
		return Other, false
	}

	tokens := tokenize(text)
	counts := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		counts[tok]++
	}

	var best Category
	bestScore := 0
	for _, cat := range All() {
		keywords, ok := textKeywords[cat]
		if !ok {
			continue
		}
		score := 0
		for _, kw := range keywords {
			if strings.ContainsRune(kw, ' ') {
				if strings.Contains(strings.ToLower(text), kw) {
					score++
				}
				continue
			}
			score += counts[kw]
		}
		if score > bestScore {
			best, bestScore = cat, score
		}
	}

	if bestScore >= minKeywordHits {
		return best, true
	}
	return Other, false
}

// tokenize lowercases text and splits it on anything that is not a letter
// or digit.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
