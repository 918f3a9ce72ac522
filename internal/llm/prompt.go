package llm

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const mealSystemInstruction = "Tu es un nutritionniste expert qui génère des suggestions de repas personnalisées en JSON. Réponds uniquement en JSON valide sans markdown."

var goalText = map[string]string{
	"lose_weight": "perdre du poids (déficit calorique, riche en protéines, faible en glucides raffinés)",
	"maintain":    "maintenir son poids (alimentation équilibrée)",
	"gain_muscle": "prendre du muscle (surplus calorique, riche en protéines et glucides complexes)",
}

func formatIngredients(req MealRequest) string {
	if len(req.Ingredients) == 0 {
		return "Aucun ingrédient spécifié"
	}
	lines := make([]string, 0, len(req.Ingredients))
	for _, it := range req.Ingredients {
		unit := "unité(s)"
		if it.Unit != nil && *it.Unit != "" {
			unit = *it.Unit
		}
		line := fmt.Sprintf("%s (%s %s", it.Name, strconv.FormatFloat(it.Quantity, 'f', -1, 64), unit)
		if it.ExpirationDate != nil {
			line += ", expire le " + it.ExpirationDate.Format("2006-01-02")
		}
		lines = append(lines, line+")")
	}
	return strings.Join(lines, "\n")
}

// BuildMealPrompt asks for three lunches and three dinners fitted to the
// targets and the fridge content.
func BuildMealPrompt(req MealRequest) string {
	sex := "Femme"
	if req.Gender == "male" {
		sex = "Homme"
	}

	return `Tu es un nutritionniste expert. Génère des suggestions de repas personnalisées.

PROFIL UTILISATEUR:
- Poids: ` + strconv.FormatFloat(req.Weight, 'f', -1, 64) + ` kg
- Taille: ` + strconv.FormatFloat(req.Height, 'f', -1, 64) + ` cm
- Âge: ` + strconv.Itoa(req.Age) + ` ans
- Sexe: ` + sex + `
- Niveau d'activité: ` + req.ActivityLevel + `
- Objectif: ` + goalText[req.Goal] + `

OBJECTIFS NUTRITIONNELS JOURNALIERS:
- Calories: ` + strconv.Itoa(req.Calories) + ` kcal
- Protéines: ` + strconv.Itoa(req.Proteins) + `g
- Glucides: ` + strconv.Itoa(req.Carbs) + `g
- Lipides: ` + strconv.Itoa(req.Fats) + `g

INGRÉDIENTS DISPONIBLES DANS LE FRIGO:
` + formatIngredients(req) + `

INSTRUCTIONS:
1. Propose 3 recettes pour le DÉJEUNER et 3 recettes pour le DÎNER
2. Chaque repas doit représenter environ 35-40% des besoins journaliers
3. Priorise les ingrédients qui expirent bientôt
4. Adapte les portions et les recettes à l'objectif de l'utilisateur
5. Sois créatif mais réaliste avec les ingrédients disponibles

Retourne UNIQUEMENT un JSON valide (sans markdown) avec cette structure:
{
  "lunch": [
    {
      "name": "Nom du plat",
      "emoji": "🍽️",
      "type": "lunch",
      "calories": 500,
      "proteins": 30,
      "carbs": 50,
      "fats": 15,
      "ingredients": ["ingrédient 1", "ingrédient 2"],
      "instructions": ["étape 1", "étape 2"],
      "prepTime": 20,
      "difficulty": "easy",
      "tips": "Conseil nutritionnel adapté à l'objectif"
    }
  ],
  "dinner": [...]
}`
}

const receiptFormat = `
Retourne UNIQUEMENT un tableau JSON valide sans Markdown, avec cette structure pour chaque item :
[
  {
    "name": "Nom du produit nettoyé",
    "quantity": 1,
    "price": 2.50,
    "category": "Catégorie",
    "expirationDate": "YYYY-MM-DD"
  }
]

"quantity" est le nombre d'unités, "price" le prix total de la ligne (optionnel).
Ignore les produits non alimentaires (journaux, sacs poubelle, etc.).
Si tu ne peux pas lire le ticket, retourne un tableau vide [].`

func receiptTask(source string, today time.Time) string {
	return `Tu es un assistant expert en extraction de données de tickets de caisse.
Analyse ` + source + ` et extrais la liste des produits alimentaires achetés.
Pour chaque produit, devine une catégorie appropriée (ex: "Légumes", "Viande", "Laitages", "Boissons", "Epicerie", etc.) et estime une date de péremption réaliste basée sur le type de produit (ex: 3-5 jours pour viande, 7-10 jours pour laitages, etc.) à partir d'aujourd'hui (` + today.Format("2006-01-02") + `).
`
}

// BuildReceiptImagePrompt accompanies a receipt photo.
func BuildReceiptImagePrompt(today time.Time) string {
	return receiptTask("cette image de ticket de caisse", today) + receiptFormat
}

// BuildReceiptTextPrompt wraps OCR output of a receipt.
func BuildReceiptTextPrompt(ocrText string, today time.Time) string {
	return receiptTask("le texte OCR de ticket de caisse ci-dessous", today) + receiptFormat +
		"\n\nTEXTE OCR:\n" + ocrText
}
