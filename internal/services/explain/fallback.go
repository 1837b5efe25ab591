package explain

import "github.com/ternarybob/kengetal/internal/finance"

// Fixed texts used when no generated explanation is available.
const (
	GenericFallback = "Voor deze ratio is geen toelichting beschikbaar. Raadpleeg een financieel adviseur voor een beoordeling van deze waarde."

	InsufficientDataExplanation = "Onvoldoende gegevens om deze ratio te berekenen. Controleer of de benodigde posten in de upload staan en of de noemer niet nul is."
)

var fallbacks = map[string]string{
	finance.NameRentabiliteit: "De rentabiliteit van het eigen vermogen (ROE) laat zien hoeveel nettowinst de organisatie maakt " +
		"op het geld dat de eigenaren erin hebben gestoken. In de sector geldt een rendement tussen 5% en 15% als gezond, " +
		"met ongeveer 8% als streefwaarde. Ligt de waarde lager, dan verdient de organisatie weinig op haar eigen vermogen; " +
		"ligt ze veel hoger, kijk dan of dat komt door een klein eigen vermogen en dus meer risico.",
	finance.NameLiquiditeit: "De liquiditeit (current ratio) geeft aan of de organisatie haar kortlopende schulden kan betalen " +
		"uit de vlottende activa, zoals voorraden, debiteuren en liquide middelen. Een waarde tussen 1,0 en 3,0 is gezond, " +
		"rond 1,5 is ideaal. Onder 1,0 kunnen betalingsproblemen ontstaan; ruim boven 3,0 staat er mogelijk te veel geld stil.",
	finance.NameSolvabiliteit: "De solvabiliteit laat zien welk deel van het totale vermogen uit eigen vermogen bestaat en " +
		"daarmee hoe goed de organisatie op lange termijn aan haar verplichtingen kan voldoen. In de sector is 20% tot 60% " +
		"gezond, met 35% als streefwaarde. Een lage solvabiliteit betekent een grote afhankelijkheid van vreemd vermogen.",
}

// Fallback returns the fixed explanation for a ratio name, or GenericFallback for unknown names
func Fallback(ratioName string) string {
	if text, ok := fallbacks[ratioName]; ok {
		return text
	}
	return GenericFallback
}
