package accounts

import "github.com/cleared-dev/conferencia/internal/model"

// SampleChart returns a small chart of accounts used to seed demo projects.
// "1.1.2.01.001" has no "1.1.2.01" parent in the chart.
func SampleChart() []model.Account {
	return []model.Account{
		{ID: 1, Classification: "1", Description: "ATIVO"},
		{ID: 2, Classification: "1.1", Description: "ATIVO CIRCULANTE"},
		{ID: 5, Classification: "1.1.1", Description: "DISPONIVEL"},
		{ID: 10, Classification: "1.1.1.001", Description: "CAIXA GERAL"},
		{ID: 11, Classification: "1.1.1.002", Description: "BANCOS CONTA MOVIMENTO"},
		{ID: 20, Classification: "1.1.2", Description: "CLIENTES"},
		{ID: 21, Classification: "1.1.2.01.001", Description: "CLIENTES NACIONAIS"},
		{ID: 30, Classification: "1.1.3", Description: "ESTOQUES"},
		{ID: 40, Classification: "1.1.4", Description: "TRIBUTOS A RECUPERAR"},
		{ID: 100, Classification: "2", Description: "PASSIVO"},
		{ID: 110, Classification: "2.1", Description: "PASSIVO CIRCULANTE"},
		{ID: 120, Classification: "2.1.1", Description: "FORNECEDORES"},
		{ID: 121, Classification: "2.1.1.001", Description: "FORNECEDORES NACIONAIS"},
		{ID: 130, Classification: "2.1.2", Description: "TRIBUTOS RETIDOS A RECOLHER"},
		{ID: 300, Classification: "3", Description: "RECEITAS"},
		{ID: 310, Classification: "3.1", Description: "RECEITA BRUTA"},
		{ID: 311, Classification: "3.1.1", Description: "VENDA DE MERCADORIAS"},
		{ID: 312, Classification: "3.1.2", Description: "PRESTACAO DE SERVICOS"},
		{ID: 400, Classification: "4", Description: "CUSTOS E DESPESAS"},
		{ID: 410, Classification: "4.1", Description: "SERVICOS TOMADOS"},
	}
}
