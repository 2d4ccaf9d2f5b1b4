// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocode

import "strings"

// brazilStates maps full Brazilian state names to their two-letter
// abbreviation. Used as fallback when the payload carries no ISO 3166-2 code.
var brazilStates = map[string]string{
	"acre":                "AC",
	"alagoas":             "AL",
	"amapá":               "AP",
	"amazonas":            "AM",
	"bahia":               "BA",
	"ceará":               "CE",
	"distrito federal":    "DF",
	"espírito santo":      "ES",
	"goiás":               "GO",
	"maranhão":            "MA",
	"mato grosso":         "MT",
	"mato grosso do sul":  "MS",
	"minas gerais":        "MG",
	"pará":                "PA",
	"paraíba":             "PB",
	"paraná":              "PR",
	"pernambuco":          "PE",
	"piauí":               "PI",
	"rio de janeiro":      "RJ",
	"rio grande do norte": "RN",
	"rio grande do sul":   "RS",
	"rondônia":            "RO",
	"roraima":             "RR",
	"santa catarina":      "SC",
	"são paulo":           "SP",
	"sergipe":             "SE",
	"tocantins":           "TO",
}

// brazilMetroRegions maps municipalities to the metropolitan region they are
// the seat of. Only the major capitals are tracked; everything else has no
// metropolitan region value.
var brazilMetroRegions = map[string]string{
	"belo horizonte": "Região Metropolitana de Belo Horizonte",
	"belém":          "Região Metropolitana de Belém",
	"curitiba":       "Região Metropolitana de Curitiba",
	"fortaleza":      "Região Metropolitana de Fortaleza",
	"goiânia":        "Região Metropolitana de Goiânia",
	"manaus":         "Região Metropolitana de Manaus",
	"porto alegre":   "Região Metropolitana de Porto Alegre",
	"recife":         "Região Metropolitana do Recife",
	"rio de janeiro": "Região Metropolitana do Rio de Janeiro",
	"salvador":       "Região Metropolitana de Salvador",
	"são paulo":      "Região Metropolitana de São Paulo",
}

// stateAbbreviation resolves a full state name to its abbreviation. Unknown
// names resolve to an empty value, a two-letter input is taken verbatim.
func stateAbbreviation(state string) string {
	state = strings.TrimSpace(state)
	if state == "" {
		return ""
	}
	if len(state) == 2 {
		return strings.ToUpper(state)
	}
	return brazilStates[strings.ToLower(state)]
}

// metropolitanRegion resolves the metropolitan region for a municipality, if
// it is the seat of one.
func metropolitanRegion(municipality string) string {
	return brazilMetroRegions[strings.ToLower(strings.TrimSpace(municipality))]
}
