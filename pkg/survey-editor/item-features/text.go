package itemfeatures

import (
	"errors"

	studyTypes "github.com/case-framework/survey-editor-backend/pkg/study/types"
)

var ErrTranslationMissing = errors.New("translation missing")

// LocalisedText merges the parts of the translation for lang. Expressions and numbers are shown as placeholders.
func LocalisedText(content []studyTypes.LocalisedObject, lang string) (string, error) {
	for _, translation := range content {
		if translation.Code != lang {
			continue
		}
		mergedText := ""
		for _, p := range translation.Parts {
			switch {
			case p.IsExpression():
				mergedText += "<exp>"
			case p.IsNumber():
				mergedText += "<num>"
			default:
				mergedText += p.Str
			}
		}
		return mergedText, nil
	}
	return "", ErrTranslationMissing
}

// ComponentText renders the component's own content, or the concatenated content of its children for
// components built from several text parts.
func ComponentText(comp *studyTypes.ItemComponent, lang string) (string, error) {
	if comp == nil {
		return "", errors.New("component missing")
	}
	if len(comp.Items) == 0 {
		return LocalisedText(comp.Content, lang)
	}
	text := ""
	for _, child := range comp.Items {
		part, _ := LocalisedText(child.Content, lang)
		text += part
	}
	if text == "" {
		return "", ErrTranslationMissing
	}
	return text, nil
}
