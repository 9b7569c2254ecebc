package visa

import (
	"regexp"
	"strings"
)

// Free-text profile fields are resolved to rubric keys through flat lookup
// tables with a fixed fallback key per table. Unknown input never fails:
// every profile maps to some category ("always produce a score").
// Numeric brackets are tested in a fixed priority order; the first match
// wins and below-minimum values fall back to the lowest bracket.

var whitespaceRegex = regexp.MustCompile(`\s+`)

func mapCategory(input string, table map[string]string, fallback string) string {
	if key, ok := table[strings.ToLower(strings.TrimSpace(input))]; ok {
		return key
	}
	return fallback
}

// UK Global Talent

const (
	ukDefaultEducation  = "Other"
	ukDefaultField      = "OtherFields"
	ukDefaultExperience = "3-5Years"

	// No user-input mapping exists for institution ranking; every
	// assessment scores against the no-adjustment tier.
	ukInstitutionRanking = "OtherAccredited"
)

var (
	ukEducationTable = map[string]string{
		"phd":       "PhD",
		"masters":   "Masters",
		"bachelors": "Bachelors",
		"diploma":   "Diploma",
		"other":     "Other",
	}

	ukFieldTable = map[string]string{
		"stem":      "STEMDigitalArts",
		"economics": "BusinessEconomics",
		"arts":      "OtherFields",
	}
)

func mapUKEducation(input string) string {
	return mapCategory(input, ukEducationTable, ukDefaultEducation)
}

func mapUKField(input string) string {
	return mapCategory(input, ukFieldTable, ukDefaultField)
}

func ukExperienceBracket(years int) string {
	switch {
	case years >= 3 && years <= 5:
		return "3-5Years"
	case years >= 6 && years <= 8:
		return "5-8Years"
	case years >= 9:
		return "8+Years"
	}
	return ukDefaultExperience // below program minimum
}

// US EB-1/EB-2

const (
	usDefaultEducation  = "BachelorsExceptional"
	usDefaultField      = "ArtsCulture"
	usDefaultExperience = "5-7Years"
)

var (
	usEducationTable = map[string]string{
		"phd":       "PhD",
		"masters":   "Masters",
		"bachelors": "BachelorsExceptional",
	}

	usFieldTable = map[string]string{
		"stem":      "STEM",
		"economics": "BusinessEconomics",
		"arts":      "ArtsCulture",
	}
)

func mapUSEducation(input string) string {
	return mapCategory(input, usEducationTable, usDefaultEducation)
}

func mapUSField(input string) string {
	return mapCategory(input, usFieldTable, usDefaultField)
}

func usExperienceBracket(years int) string {
	switch {
	case years >= 5 && years <= 7:
		return "5-7Years"
	case years >= 8 && years <= 10:
		return "8-10Years"
	case years > 10:
		return "10+Years"
	}
	return usDefaultExperience // below program minimum
}

// Canada Express Entry

const (
	canadaDefaultEducation  = "OneTwoYearDiploma"
	canadaDefaultLanguage   = "CLB6"
	canadaDefaultExperience = "1Year"

	// CLBIneligible zeroes the whole assessment, not just the language
	// component.
	CLBIneligible = "BelowCLB6"
)

var (
	canadaEducationTable = map[string]string{
		"phd":                  "PhD",
		"masters":              "Masters",
		"bachelors":            "Bachelors",
		"three-year diploma":   "ThreeYearDiploma",
		"3-year diploma":       "ThreeYearDiploma",
		"one-two year diploma": "OneTwoYearDiploma",
		"1-2 year diploma":     "OneTwoYearDiploma",
	}

	canadaLanguageTable = map[string]string{
		"clb9plus":   "CLB9Plus",
		"clb8":       "CLB8",
		"clb7":       "CLB7",
		"clb6":       "CLB6",
		"below clb6": CLBIneligible,
	}
)

func mapCanadaEducation(input string) string {
	return mapCategory(input, canadaEducationTable, canadaDefaultEducation)
}

func mapCanadaLanguage(input string) string {
	return mapCategory(input, canadaLanguageTable, canadaDefaultLanguage)
}

func canadaWorkBracket(years int) string {
	switch {
	case years == 1:
		return "1Year"
	case years >= 2 && years <= 3:
		return "2-3Years"
	case years >= 4 && years <= 5:
		return "4-5Years"
	case years >= 6:
		return "6+Years"
	}
	return canadaDefaultExperience // below program minimum
}

// canadaForeignBracket returns "" when no bonus applies (< 1 year).
func canadaForeignBracket(years int) string {
	switch {
	case years >= 1 && years < 3:
		return "1-2Years"
	case years >= 3 && years < 5:
		return "3-4Years"
	case years >= 5:
		return "5+Years"
	}
	return ""
}

// Dubai Golden Visa

const (
	dubaiDefaultFinancial = "PropertyInvestment1To2M"
	dubaiDefaultSalary    = "Salary15To20K"
	dubaiDefaultPosition  = "PositionDepartmentHead"
)

var (
	dubaiFinancialTable = map[string]string{
		"publicinvestment10mplus": "PublicInvestment10MPlus",
		"publicinvestment5to10m":  "PublicInvestment5To10M",
		"privatecompany5mplus":    "PrivateCompany5MPlus",
		"privatecompany3to5m":     "PrivateCompany3To5M",
		"propertyinvestment2mplus": "PropertyInvestment2MPlus",
		"propertyinvestment1to2m":  "PropertyInvestment1To2M",
	}

	dubaiSalaryTable = map[string]string{
		"salary30kplus": "Salary30KPlus",
		"salary20to30k": "Salary20To30K",
		"salary15to20k": "Salary15To20K",
	}

	dubaiPositionTable = map[string]string{
		"ceo/md":           "PositionCEOMD",
		"seniormanagement": "PositionSeniorManagement",
		"departmenthead":   "PositionDepartmentHead",
	}
)

func mapDubaiFinancial(input string) string {
	return mapCategory(input, dubaiFinancialTable, dubaiDefaultFinancial)
}

func mapDubaiSalary(input string) string {
	return mapCategory(input, dubaiSalaryTable, dubaiDefaultSalary)
}

// mapDubaiPosition strips all whitespace before lookup so that inputs like
// "Senior Management" or "Department  Head" resolve.
func mapDubaiPosition(input string) string {
	key := whitespaceRegex.ReplaceAllString(strings.ToLower(input), "")
	if mapped, ok := dubaiPositionTable[key]; ok {
		return mapped
	}
	return dubaiDefaultPosition
}
