package craftscore

import "regexp"

// AIServicePatterns match hosts and paths of image-generation services.
var AIServicePatterns = []string{
	`midjourney\.com`,
	`openai\.com`,
	`cdn\.openai\.com`,
	`stability\.ai`,
	`replicate\.com`,
	`playground\.ai`,
	`lexica\.art`,
	`dall-e`,
	`dalle`,
	`stablediffusion`,
	`dreamstudio`,
	`nightcafe`,
	`artbreeder`,
	`craiyon`,
	`bluewillow`,
	`discord\.gg`, // many generators post results through Discord
	`discordapp\.com`,
	`discordapp\.net`,
}

// AIFilenamePatterns match AI-related keywords in file names and paths.
var AIFilenamePatterns = []string{
	`ai[_-]?generated`,
	`midjourney`,
	`dall[_-]?e`,
	`stable[_-]?diffusion`,
	`ai[_-]?art`,
	`generated[_-]?image`,
	`synthetic`,
	`prompt[_-]?\d+`,
	`seed[_-]?\d+`,
	`cfg[_-]?scale`,
	`dreambooth`,
	`lora[_-]?model`,
	`chatgpt[_\s-]?image`,
	`gpt[_-]?\d+[_\s-]?image`,
	`claude[_\s-]?image`,
	`gemini[_\s-]?image`,
	`copilot[_\s-]?image`,
	`bing[_\s-]?image[_\s-]?creator`,
	`ai[_\s-]?assistant`,
	`image[_\s-]?\d+[_\s-]?\d+[_\s-]?\d+.*(?:pm|am)`, // "Image 17 11 2025 ... PM"
	`screenshot[_\s-]?\d{4}[_-]?\d{2}[_-]?\d{2}`,
}

type compiledPattern struct {
	src string
	re  *regexp.Regexp
}

var (
	aiServiceRes  = compilePatterns(AIServicePatterns)
	aiFilenameRes = compilePatterns(AIFilenamePatterns)
)

func compilePatterns(src []string) []compiledPattern {
	out := make([]compiledPattern, len(src))
	for i, p := range src {
		out[i] = compiledPattern{src: p, re: regexp.MustCompile(p)}
	}
	return out
}
