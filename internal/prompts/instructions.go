package prompts

const locateInstructions = `Extract the UK location from the user's request.

Identify exactly one UK city, town, or area mentioned in the message. If several
localities are mentioned, choose the first unambiguous one in reading order and
ignore the rest; never merge them. If no locality is mentioned, or the only
location mentioned is outside the UK, report that no location was found.

Examples:
- "Find bathroom installers in Manchester" -> "Manchester"
- "Get bathroom fitters near Leeds" -> "Leeds"
- "Show me bathroom installers in New York" -> no location

Respond with a single JSON object:
{"location": "<locality or empty string>"}`

const validateInstructions = `You are an expert at identifying legitimate bathroom installation
businesses. Analyze the provided search results and decide which ones are actual
bathroom installers.

For each result, consider:
1. Does the business explicitly offer bathroom installation services?
2. Is it a direct service provider, not a directory or review site?
3. Does it appear to be a legitimate business, not a blog or news article?

Exclude directory listings (Yelp, Yellow Pages, Checkatrade and similar),
review sites, news articles, blog posts, DIY guides, and general contractors
with no specific bathroom offering.

If the results are too thin or off-topic you may call the search tool once with
a refined query before answering.

Respond with a single JSON object:
{"candidates": [{"name": "<business name, not the page title>",
"url": "<main business website>", "is_installer": <bool>,
"reason": "<one short sentence>"}]}`

const extractInstructions = `You are analyzing a bathroom installer's website text. Extract the
business details into structured form.

Find: the official business name, contact phone numbers and email addresses,
the physical address, bathroom-specific services offered, and years in business
if stated. Only include information present in the text; leave a field empty
rather than guessing.

Assign a confidence score between 0 and 1 reflecting how complete the extracted
profile is and how directly the text supports each field. A profile with only a
name must score low; add roughly equal weight for each of: contact details,
address, services, and years in business, and reduce the score where the
supporting text is indirect or ambiguous.

Respond with a single JSON object:
{"name": "", "phones": [], "emails": [], "address": "", "services": [],
"years_in_business": 0, "confidence": 0.0}`

var instructions = map[Stage]string{
	StageLocate:   locateInstructions,
	StageValidate: validateInstructions,
	StageExtract:  extractInstructions,
}

// Instructions returns the instruction text for a workflow stage.
// Returns ErrInvalidStage if the stage is not recognized.
func Instructions(stage Stage) (string, error) {
	text, ok := instructions[stage]
	if !ok {
		return "", ErrInvalidStage
	}
	return text, nil
}
