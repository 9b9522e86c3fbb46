package codegen

import "strings"

const (
	importPuppeteer = "const puppeteer = require('puppeteer');\n"

	header = `const browser = await puppeteer.launch()
const page = await browser.newPage()
`
	footer = "await browser.close()\n"

	wrappedHeader = `(async () => {
  const browser = await puppeteer.launch()
  const page = await browser.newPage()
`
	wrappedFooter = `  await browser.close()
})()
`

	headfulLaunch = "launch({ headless: false })"
)

// Render wraps the generated lines in the program skeleton.
func Render(lines []Line, opts Options) string {
	var sb strings.Builder

	sb.WriteString(importPuppeteer)
	sb.WriteString(programHeader(opts))

	indent := ""
	if opts.WrapAsync {
		indent = "  "
	}
	for _, l := range lines {
		sb.WriteString(indent)
		sb.WriteString(l.Value)
		sb.WriteString("\n")
	}

	if opts.WrapAsync {
		sb.WriteString(wrappedFooter)
	} else {
		sb.WriteString(footer)
	}
	return sb.String()
}

func programHeader(opts Options) string {
	hdr := header
	if opts.WrapAsync {
		hdr = wrappedHeader
	}
	if !opts.Headless {
		hdr = strings.Replace(hdr, "launch()", headfulLaunch, 1)
	}
	return hdr
}
