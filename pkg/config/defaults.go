package config

// DefaultUserAgent is a realistic desktop browser user agent. Sites with
// anti-bot heuristics frequently reject obvious library user agents;
// identifying as a mainstream browser is what the fast-mode fetcher needs
// to retrieve the same content an investigator would see.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// DefaultIgnoreDomains returns the built-in host blocklist: search
// engines, social platforms and ad/tracking infrastructure. These are
// non-content domains for an investigation crawl; nearly every page
// links to several of them and following those links burns the visit
// budget on noise. NewCrawlConfig installs the list; set an explicit
// list in the config to override it.
func DefaultIgnoreDomains() []string {
	return []string{
		"google.com",
		"bing.com",
		"duckduckgo.com",
		"yahoo.com",
		"baidu.com",
		"yandex.com",
		"facebook.com",
		"twitter.com",
		"x.com",
		"instagram.com",
		"tiktok.com",
		"linkedin.com",
		"pinterest.com",
		"youtube.com",
		"doubleclick.net",
		"googletagmanager.com",
		"google-analytics.com",
		"googlesyndication.com",
		"amazon-adsystem.com",
	}
}

// DefaultExcludedURLTerms returns the built-in URL substring blocklist:
// account/session endpoints and other paths that never carry page
// content worth keeping in a case file.
func DefaultExcludedURLTerms() []string {
	return []string{
		"/login",
		"/signin",
		"/sign-in",
		"/signup",
		"/sign-up",
		"/register",
		"/logout",
		"/account",
		"/cart",
		"/checkout",
		"/unsubscribe",
		"share=",
		"replytocom=",
	}
}
