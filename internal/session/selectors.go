package session

// Instagram DOM selectors
// These are isolated here because Instagram changes their DOM frequently
// Update these when scraping breaks

const (
	// Media selectors
	VideoPlayer = `video`

	// Login page indicators (for detecting auth state)
	LoginForm = `input[name="username"]`
)

// CaptionSelectors are tried in order; the first one yielding visible text
// wins. Instagram rotates these obfuscated class names regularly.
var CaptionSelectors = []string{
	`div._a9zs`,
	`div._a9zr div._a9zs`,
	`div[class*="_a9zs"]`,
	`div._aacl._aaco._aacu._aacx._aad7._aade`,
	`h1._aacl._aaco._aacu._aacx._aad7._aade`,
	`div._ae5q._ae5r._ae5s`,
}
