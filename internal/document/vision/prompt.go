package vision

import (
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
)

// Answer is the shape the model is asked to return. Unreadable fields are null.
type Answer struct {
	Nom            *string `json:"nom" jsonschema:"nom de famille lu sur la carte"`
	Prenom         *string `json:"prenom" jsonschema:"prénom(s) lus sur la carte"`
	DateNaissance  *string `json:"dateNaissance" jsonschema:"date de naissance au format DD.MM.YYYY"`
	Sexe           *string `json:"sexe" jsonschema:"M ou F"`
	DateExpiration *string `json:"dateExpiration" jsonschema:"date d'expiration au format DD.MM.YYYY"`
	DocumentNumber *string `json:"documentNumber" jsonschema:"numéro du document"`
}

const (
	rectoCaption = "RECTO (face avant de la carte) :"
	versoCaption = "VERSO (face arrière de la carte) :"
)

// Prompt is the extraction instruction sent after the card images.
const Prompt = `Tu reçois 2 images d'une carte d'identité nationale (CNI) : la première est le RECTO (face avant), la seconde est le VERSO (face arrière).

FORMATS POSSIBLES :
- CNI camerounaise ancienne (v1) : pas de zone MRZ, texte imprimé avec étiquettes comme NOM/NAME, PRENOM/SURNAME, DATE DE NAISSANCE/DATE OF BIRTH, SEXE/SEX.
- CNI camerounaise récente (v2) : avec zone MRZ en bas du verso.
- CNI française : format carte bancaire, MRZ au verso.

OÙ TROUVER LES CHAMPS :
- RECTO : nom de famille, prénom(s), date de naissance, sexe, parfois numéro de document.
- VERSO : date d'expiration (ou date de validité), numéro de document (si pas au recto).

INSTRUCTIONS :
- Lis le TEXTE IMPRIMÉ visible sur les images. Ne devine pas, ne fabrique pas de données.
- Pour le nom et prénom, lis la valeur APRÈS l'étiquette (ex: après "NOM/NAME :" ou "SURNAME :").
- Les dates sont au format DD.MM.YYYY (ex: 16.04.1999).
- Le sexe est M ou F.

Retourne UNIQUEMENT un JSON (sans markdown, sans explication) :
{"nom":"...","prenom":"...","dateNaissance":"DD.MM.YYYY","sexe":"M/F","dateExpiration":"DD.MM.YYYY","documentNumber":"..."}
Mets null pour les champs non lisibles.`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

// Schema is the JSON schema of Answer, used for structured output.
func Schema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.For[Answer](nil)
	})
	return schema, schemaErr
}
