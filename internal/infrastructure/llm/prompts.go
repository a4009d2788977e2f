package llm

// Prompt templates for the three tiers. Placeholders are substituted with
// strings.ReplaceAll; replies must carry a JSON object, extracted with the
// shared balanced-brace scanner.

const screeningPrompt = `You screen federal government activity for a public tracker of threats to
cultural resources and the communities that hold them: Indigenous/Tribal,
African-descendant, Latiné, Asian American and Pacific Islander, immigrant,
and other ethnic and identity communities, plus the arts, heritage, and
education institutions that serve them.

Review this item and decide whether it belongs in the tracker:

{ITEM_DATA}

An item is relevant when it materially affects cultural heritage, cultural
practice, civil rights, immigration, tribal sovereignty, environmental
justice, or cultural/educational institutions, whether the effect is
harmful or protective. Routine administrative notices with no community
impact are not relevant.

Respond with only a JSON object in exactly this form:
{
  "relevant": true,
  "confidence": 0.0,
  "category": "one of: executive_orders, agency_actions, legislation, litigation, other_domestic, international",
  "threat_level": "SEVERE, HARMFUL, or PROTECTIVE",
  "brief_reason": "one sentence"
}`

const generationPrompt = `You write entries for a public tracker of federal threats to cultural
resources and communities. Draft one complete entry for the {CATEGORY}
category from this source item:

{ITEM_DATA}
{EXAMPLES}
Produce a JSON object with these fields:
- "i": unique short identifier (use "id" instead of "i" only for legislation)
- "t": document type label, e.g. "Executive Order", "Final Rule", "Public Law"
- "n": document number or designation
- "T": full title; wrap it in <span style="color:#991B1B"> when threat level
  is SEVERE and <span style="color:#065F46"> when PROTECTIVE
- "s": short slug, 2-5 words
- "d": date, YYYY-MM-DD
- "a": administration, one of "Trump I", "Trump II", "Biden", "Obama"
- "A": array of agency code strings
- "S": current status text
- "L": "SEVERE", "HARMFUL", or "PROTECTIVE"
- "D": detailed description, at least 100 words, factual and sourced from
  the item
- "I": impact analysis object mapping each affected community name to an
  object with "people", "places", "practices", and "treasures" strings
- "c": array of affected community names

Respond with only the JSON object.`

const qualityPrompt = `You review draft tracker entries for quality. This entry failed one or
more schema checks:

{ENTRY_DATA}

Judge whether the entry is still publishable. Cosmetic problems (slightly
short description, missing color span, awkward slug) are minor; factual
emptiness, a wrong category of record, or missing impact analysis are
major.

Respond with only a JSON object:
{
  "valid": true,
  "issues": ["..."],
  "severity": "minor or major"
}`
