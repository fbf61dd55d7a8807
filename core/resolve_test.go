package core

import (
	"encoding/json"
	"testing"

	"github.com/huangsam/scorecard/schema"
	"github.com/stretchr/testify/assert"
)

func TestResolveVariable(t *testing.T) {
	tests := []struct {
		name     string
		record   schema.InputRecord
		variable string
		typ      schema.VariableType
		aliases  []string
		expected schema.Value
	}{
		{"Exact", schema.InputRecord{"credit_score": 700}, "credit_score", schema.Continuous, nil, schema.NumberValue(700)},
		{"Snake To Camel", schema.InputRecord{"creditScore": 700}, "credit_score", schema.Continuous, nil, schema.NumberValue(700)},
		{"Camel To Snake", schema.InputRecord{"monthly_income": 5}, "monthlyIncome", schema.Continuous, nil, schema.NumberValue(5)},
		{"Without Underscores", schema.InputRecord{"monthlyincome": 5}, "monthly_income", schema.Continuous, nil, schema.NumberValue(5)},
		{"Case Insensitive", schema.InputRecord{"CREDIT_SCORE": 640}, "credit_score", schema.Continuous, nil, schema.NumberValue(640)},
		{"Synonym Score", schema.InputRecord{"score": 640}, "credit_score", schema.Continuous, nil, schema.NumberValue(640)},
		{"Synonym Income", schema.InputRecord{"salary_amount": 3000}, "income", schema.Continuous, nil, schema.NumberValue(3000)},
		{"Synonym Monthly Income", schema.InputRecord{"income": 3000}, "monthly_income", schema.Continuous, nil, schema.NumberValue(3000)},
		{"Alias", schema.InputRecord{"bureau_pts": 610}, "credit_score", schema.Continuous, []string{"bureau_pts"}, schema.NumberValue(610)},
		{"Exact Beats Synonym", schema.InputRecord{"score": 1, "credit_score": 2}, "credit_score", schema.Continuous, nil, schema.NumberValue(2)},
		{"Numeric String", schema.InputRecord{"income": " 45000 "}, "income", schema.Continuous, nil, schema.NumberValue(45000)},
		{"Formatted Number", schema.InputRecord{"income": "$45,000"}, "income", schema.Continuous, nil, schema.NumberValue(45000)},
		{"Json Number", schema.InputRecord{"income": json.Number("12.5")}, "income", schema.Continuous, nil, schema.NumberValue(12.5)},
		{"Bool Continuous", schema.InputRecord{"owner": true}, "owner", schema.Continuous, nil, schema.NumberValue(1)},
		{"Bool Categorical", schema.InputRecord{"owner": false}, "owner", schema.Categorical, nil, schema.TextValue("false")},
		{"Number Categorical", schema.InputRecord{"grade": 3}, "grade", schema.Categorical, nil, schema.TextValue("3")},
		{"Text Stays Text", schema.InputRecord{"income": "lots"}, "income", schema.Continuous, nil, schema.TextValue("lots")},
		{"Null Is Missing", schema.InputRecord{"income": nil}, "income", schema.Continuous, nil, schema.NotFound},
		{"Blank Is Missing", schema.InputRecord{"income": "  "}, "income", schema.Continuous, nil, schema.NotFound},
		{"Absent", schema.InputRecord{"age": 30}, "income", schema.Continuous, nil, schema.NotFound},
		{"Nil Record", nil, "income", schema.Continuous, nil, schema.NotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveVariable(tt.record, tt.variable, tt.typ, tt.aliases...)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestResolveDeterministicFold(t *testing.T) {
	record := schema.InputRecord{"Credit_Score": 1, "CREDITSCORE": 2, "credit-score": 3}
	for range 50 {
		assert.Equal(t, schema.NumberValue(2), ResolveVariable(record, "creditscore_", schema.Continuous))
	}
}

func TestResolveField(t *testing.T) {
	record := schema.InputRecord{"employment": "Salaried", "dti": "0.42"}
	assert.Equal(t, schema.TextValue("Salaried"), resolveField(record, "employment"))
	assert.Equal(t, schema.NumberValue(0.42), resolveField(record, "debt_to_income"))
	assert.Equal(t, schema.NotFound, resolveField(record, "missing"))
}

func TestNamingHelpers(t *testing.T) {
	assert.Equal(t, "monthly_income", toSnake("monthlyIncome"))
	assert.Equal(t, "monthlyIncome", toCamel("monthly_income"))
	assert.Equal(t, "monthlyincome", foldKey("Monthly-Income"))
}

func FuzzResolveVariable(f *testing.F) {
	f.Add("credit_score", "760")
	f.Add("monthlyIncome", "$60,000")
	f.Add("", "")
	f.Add("ÄÖÜ", "NaN")
	f.Fuzz(func(t *testing.T, key, value string) {
		record := schema.InputRecord{key: value}
		for _, typ := range []schema.VariableType{schema.Continuous, schema.Categorical} {
			v := ResolveVariable(record, key, typ)
			if typ == schema.Categorical && v.Kind == schema.KindNumber {
				t.Errorf("categorical resolution produced a number for %q", value)
			}
		}
	})
}
