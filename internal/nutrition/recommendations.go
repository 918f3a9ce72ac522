package nutrition

var goalAdvice = map[Goal][]string{
	GoalLoseWeight: {
		"🥗 Privilégiez les légumes verts à chaque repas pour augmenter la satiété",
		"💧 Buvez au moins 2L d'eau par jour pour optimiser le métabolisme",
		"🍗 Consommez des protéines maigres à chaque repas pour préserver la masse musculaire",
	},
	GoalGainMuscle: {
		"🥩 Répartissez vos protéines sur 4-5 repas pour optimiser la synthèse musculaire",
		"🍚 Consommez des glucides complexes avant et après l'entraînement",
		"😴 Dormez 7-8h par nuit pour favoriser la récupération",
	},
	GoalMaintain: {
		"⚖️ Maintenez un équilibre entre protéines, glucides et lipides",
		"🌈 Variez les couleurs dans votre assiette pour diversifier les nutriments",
	},
}

const (
	stepsAdvice   = "🚶 Visez 10 000 pas par jour pour augmenter votre dépense énergétique"
	closingAdvice = "⏰ Évitez de manger 2-3h avant le coucher pour une meilleure digestion"
)

// Recommendations returns the ordered advice list for p.
func Recommendations(p BiometricProfile, bmi float64) []string {
	advice := goalAdvice[p.Goal]
	out := make([]string, 0, len(advice)+2)
	out = append(out, advice...)
	if p.Goal == GoalLoseWeight && bmi > 25 {
		out = append(out, stepsAdvice)
	}
	return append(out, closingAdvice)
}
