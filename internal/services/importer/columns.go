package importer

import (
	"strings"

	"github.com/findosh/showroom/internal/textfold"
)

const (
	colBrand        = "brand"
	colModel        = "model"
	colVersion      = "version"
	colYear         = "year"
	colYearModel    = "yearModel"
	colPrice        = "price"
	colMileage      = "mileage"
	colFuel         = "fuel"
	colTransmission = "transmission"
	colBodyType     = "bodyType"
	colColor        = "color"
	colDoors        = "doors"
	colPlate        = "plate"
	colDescription  = "description"
	colCondition    = "condition"
	colFeatured     = "featured"
	colOptionals    = "optionals"
)

// columnAliases maps folded header labels to column names. English and
// Portuguese spreadsheets are both common.
var columnAliases = map[string]string{
	"brand":          colBrand,
	"make":           colBrand,
	"marca":          colBrand,
	"fabricante":     colBrand,
	"model":          colModel,
	"modelo":         colModel,
	"version":        colVersion,
	"trim":           colVersion,
	"versao":         colVersion,
	"year":           colYear,
	"ano":            colYear,
	"ano fabricacao": colYear,
	"year model":     colYearModel,
	"model year":     colYearModel,
	"ano modelo":     colYearModel,
	"price":          colPrice,
	"preco":          colPrice,
	"valor":          colPrice,
	"mileage":        colMileage,
	"km":             colMileage,
	"quilometragem":  colMileage,
	"kilometragem":   colMileage,
	"fuel":           colFuel,
	"combustivel":    colFuel,
	"transmission":   colTransmission,
	"gearbox":        colTransmission,
	"cambio":         colTransmission,
	"body type":      colBodyType,
	"body":           colBodyType,
	"carroceria":     colBodyType,
	"color":          colColor,
	"colour":         colColor,
	"cor":            colColor,
	"doors":          colDoors,
	"portas":         colDoors,
	"plate":          colPlate,
	"placa":          colPlate,
	"description":    colDescription,
	"descricao":      colDescription,
	"observacoes":    colDescription,
	"condition":      colCondition,
	"condicao":       colCondition,
	"estado":         colCondition,
	"featured":       colFeatured,
	"destaque":       colFeatured,
	"optionals":      colOptionals,
	"options":        colOptionals,
	"opcionais":      colOptionals,
	"itens":          colOptionals,
}

// TemplateHeader is the header row of the downloadable import template
var TemplateHeader = []string{
	"marca", "modelo", "versao", "ano", "ano modelo", "preco", "km",
	"combustivel", "cambio", "carroceria", "cor", "portas", "placa",
	"descricao", "condicao", "destaque", "opcionais",
}

// TemplateExample is a sample row matching TemplateHeader
var TemplateExample = []string{
	"Toyota", "Corolla", "XEi 2.0", "2021", "2022", "R$ 119.900,00", "35.000",
	"Flex", "Automatico", "Sedan", "Prata", "4", "ABC1D23",
	"Unico dono, revisoes na concessionaria", "usado", "sim", "Ar condicionado|Direcao eletrica|Multimidia",
}

type columnMap map[string]int

// mapColumns resolves header cells to column indexes; unknown cells are
// ignored and the first occurrence of a column wins
func mapColumns(header []string) columnMap {
	cols := make(columnMap)
	for i, h := range header {
		name, ok := columnAliases[foldHeader(h)]
		if !ok {
			continue
		}
		if _, seen := cols[name]; !seen {
			cols[name] = i
		}
	}
	return cols
}

func foldHeader(h string) string {
	h = textfold.Key(strings.TrimSpace(h))
	h = strings.NewReplacer("_", " ", "-", " ", "/", " ", "(r$)", "", "(km)", "").Replace(h)
	return strings.Join(strings.Fields(h), " ")
}
