package match

import (
	"encoding/json"
	"strings"

	"github.com/Liancohen0104/Rentmate/internal/model"
)

// rankInstructions is the fixed contract sent to the ranking model. It
// pins the exact output shape and the scoring policy; the profile and
// candidate payloads are appended below it.
const rankInstructions = `INSTRUCTIONS:
You are a ranking system for rental apartment listings.

INPUT:
1) "User requirements" (JSON object). Keys may include:
   city, neighborhood, minRooms, maxRooms, minPrice, maxPrice,
   minSquareMeter, maxSquareMeter, propertyType, minFloor, maxFloor,
   tagsWanted, tagsExcluded, priority.
2) "Listings" (array of objects) with fields:
   id, city, area, neighborhood, street, houseNumber, price, priceBefore,
   propertyType, rooms, squareMeter, floor, condition, tags.

TASK:
- Rank all listings by how well they satisfy the user requirements.
- Always return **valid JSON only** in the format:
{
  "items": [
    { "id": "<same as input>", "score": 0.0-1.0, "reason": "up to 20 words" }
  ]
}
- Sort items by score (descending). Break ties by keeping input order.

SCORING RULES:
1. City/Neighborhood matching
   - Treat city and neighborhood as very important.
   - Be tolerant to spelling differences, typos, hyphens, or close
     variants; a minor spelling variance must not zero out a match.
   - If neighborhood is specified and matches closely, strongly increase
     the score.
   - If city matches but neighborhood mismatches, lower the score but do
     not eliminate the listing.
2. Tags
   - Listings carrying tagsWanted get a significant score boost.
   - Listings carrying tagsExcluded are penalized heavily or disqualified.
3. Priority handling
   - If "priority" is set (price, rooms, location or size), that
     dimension dominates the weighting.
   - Otherwise use default weights: price 40%, rooms 30%,
     location + tags 30%.
4. Numeric ranges (rooms, price, square meters, floor)
   - Bounds are soft: allow a tolerance band of roughly 10% on price and
     square meters and 0.5 on rooms before the penalty escalates.
   - Listings outside the ranges receive a low score but are never
     hard-excluded; they may still appear if no better matches exist.
5. General
   - Do NOT invent details not present in the listing.
   - Always provide a short, clear reason in English (max 20 words).
   - If nothing matches perfectly, return the closest listings with
     honest reasoning.`

// buildPrompt serializes the profile and projected candidates into a
// single instruction document. Identical inputs yield byte-identical
// output — no timestamps, no randomized ordering.
func buildPrompt(profile model.PreferenceProfile, listings []model.MinimalListing) string {
	reqJSON, _ := json.MarshalIndent(profile, "", "  ")
	listJSON, _ := json.MarshalIndent(listings, "", "  ")

	var b strings.Builder
	b.Grow(len(rankInstructions) + len(reqJSON) + len(listJSON) + 64)
	b.WriteString(rankInstructions)
	b.WriteString("\n\nUSER REQUIREMENTS:\n")
	b.Write(reqJSON)
	b.WriteString("\n\nLISTINGS:\n")
	b.Write(listJSON)
	b.WriteString("\n")
	return b.String()
}
