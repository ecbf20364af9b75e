package siof

import "strconv"

// formPayload reproduces the portal's search form exactly as the
// browser submits it: every optional filter empty, the target period
// and report filled in, output format fixed to the spreadsheet
// export. The field names are the WebForms control IDs and must match
// the page byte for byte or the post is ignored.
func formPayload(target Target, token string) map[string]string {
	return map[string]string{
		"__EVENTTARGET":                      "ctl00$cphCorpo$btnVisualizar",
		"__EVENTARGUMENT":                    "",
		"__LASTFOCUS":                        "",
		"__VIEWSTATE":                        token,
		"__VIEWSTATEGENERATOR":               "AA2FB94C",
		"ctl00$cphCorpo$ddlAno":              strconv.Itoa(target.Year),
		"ctl00$cphCorpo$ddlMes":              strconv.Itoa(target.Month),
		"ctl00$cphCorpo$ddlSecretaria":       "",
		"ctl00$cphCorpo$ddlOrgao":            "",
		"ctl00$cphCorpo$ddlUnidOrcamentaria": "",
		"ctl00$cphCorpo$ddlFuncao":           "",
		"ctl00$cphCorpo$ddlSubFuncao":        "",
		"ctl00$cphCorpo$ddlPrograma":         "",
		"ctl00$cphCorpo$ddlProjetoAtividade": "",
		"ctl00$cphCorpo$ddlRegiao":           "",
		"ctl00$cphCorpo$ddlLancContabil":     "",
		"ctl00$cphCorpo$ddlFonte":            "",
		"ctl00$cphCorpo$ddlSubfonte":         "",
		"ctl00$cphCorpo$ddlGrupofonterecurso": "",
		"ctl00$cphCorpo$ddlClassificacao":    "",
		"ctl00$cphCorpo$ddlDespCategoria":    "",
		"ctl00$cphCorpo$ddlDespGrupo":        "",
		"ctl00$cphCorpo$ddlDespModalidade":   "",
		"ctl00$cphCorpo$ddlDespElemento":     "",
		"ctl00$cphCorpo$ddlGrupoFonte":       "",
		"ctl00$cphCorpo$ddlGrupoPrograma":    "",
		"ctl00$cphCorpo$ddlEixo":             "",
		"ctl00$cphCorpo$ddlArea":             "",
		"ctl00$cphCorpo$ddlPoder":            "",
		"ctl00$cphCorpo$ddlIdResultadoPrimario": "",
		"ctl00$cphCorpo$ddlModalidade91":     "TUDO",
		"ctl00$cphCorpo$ddlEmenda":           "TUDO",
		"ctl00$cphCorpo$ddlPrevidencia":      "TUDO",
		"ctl00$cphCorpo$txtCodDotacao":       "",
		"ctl00$cphCorpo$rblRelatorio":        "Secretaria",
		"ctl00$cphCorpo$ddlRelatorio":        target.Report,
		"ctl00$cphCorpo$rblFormato":          "Xlss",
	}
}
