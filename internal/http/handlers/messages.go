package handlers

import (
	"fmt"

	"golang.org/x/text/language"

	"trainforge/internal/classify"
)

// unsupportedFormatTemplates carries the user-facing rejection message per
// supported response language. %s receives the supported-format list.
var unsupportedFormatTemplates = map[string]string{
	"en": "This file format is not supported. Supported formats: %s.",
	"es": "Este formato de archivo no es compatible. Formatos admitidos: %s.",
	"fr": "Ce format de fichier n'est pas pris en charge. Formats acceptés : %s.",
	"de": "Dieses Dateiformat wird nicht unterstützt. Unterstützte Formate: %s.",
	"pt": "Este formato de arquivo não é suportado. Formatos aceitos: %s.",
	"id": "Format file ini tidak didukung. Format yang didukung: %s.",
}

func unsupportedFormatMessage(tag language.Tag) string {
	base, _ := tag.Base()
	tmpl, ok := unsupportedFormatTemplates[base.String()]
	if !ok {
		tmpl = unsupportedFormatTemplates["en"]
	}
	return fmt.Sprintf(tmpl, classify.SupportedFormats())
}
