package usecase

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/loanengine/internal/application/dto"
	"github.com/bibbank/loanengine/internal/domain/model"
	"github.com/bibbank/loanengine/internal/domain/valueobject"
)

func requireLoanID(loanID string) error {
	if loanID == "" {
		return model.NewValidationError("loan_id", model.ErrMissingLoanID, "")
	}
	return nil
}

func buildTerms(
	principal, annualRate decimal.Decimal,
	termCount int,
	frequency, method string,
	firstDueDate time.Time,
) (model.LoanTerms, error) {
	f, err := valueobject.NewFrequency(frequency)
	if err != nil {
		return model.LoanTerms{}, model.NewValidationError("frequency", model.ErrUnsupportedFrequency, frequency)
	}
	m, err := valueobject.NewAmortizationMethod(method)
	if err != nil {
		return model.LoanTerms{}, model.NewValidationError("method", model.ErrUnsupportedMethod, method)
	}
	return model.NewLoanTerms(principal, annualRate, termCount, f, m, firstDueDate)
}

func toScheduleResponse(loanID string, terms model.LoanTerms, installments []model.Installment) dto.ScheduleResponse {
	totals := model.ScheduleTotals(installments)
	resp := dto.ScheduleResponse{
		LoanID:         loanID,
		Method:         terms.Method().String(),
		Frequency:      terms.Frequency().String(),
		AnnualRate:     terms.AnnualRate(),
		TotalPrincipal: totals.TotalPrincipal,
		TotalInterest:  totals.TotalInterest,
		TotalPayable:   totals.TotalPayable,
		Installments:   make([]dto.InstallmentResponse, 0, len(installments)),
	}
	for _, inst := range installments {
		resp.Installments = append(resp.Installments, dto.InstallmentResponse{
			SequenceNumber:   inst.SequenceNumber,
			DueDate:          inst.DueDate,
			Principal:        inst.PrincipalComponent,
			Interest:         inst.InterestComponent,
			Total:            inst.ScheduledTotal,
			RemainingBalance: inst.RemainingBalanceAfter,
			Status:           inst.Status.String(),
		})
	}
	return resp
}

func toProfile(req dto.EvaluateApplicantRequest) model.ApplicantProfile {
	return model.ApplicantProfile{
		MonthlyIncome:        req.MonthlyIncome,
		MonthlyDebtPayments:  req.MonthlyDebtPayments,
		RequestedInstallment: req.RequestedInstallment,
		RequestedAmount:      req.RequestedAmount,
		DownPaymentPct:       req.DownPaymentPct,
		CollateralValue:      req.CollateralValue,
		EmploymentType:       model.EmploymentType(req.EmploymentType),
		MaritalStatus:        model.MaritalStatus(req.MaritalStatus),
		EmploymentMonths:     req.EmploymentMonths,
		VerifiedReferences:   req.VerifiedReferences,
		MonthsAtResidence:    req.MonthsAtResidence,
		Dependents:           req.Dependents,
		Age:                  req.Age,
		OwnsHome:             req.OwnsHome,
	}
}

func toEvaluationResponse(loanID string, r model.CreditScoreResult) dto.EvaluationResponse {
	resp := dto.EvaluationResponse{
		LoanID:              loanID,
		Classification:      r.Classification().String(),
		Decision:            r.Decision().String(),
		TotalScore:          r.TotalScore(),
		AppliedInterestRate: r.AppliedInterestRate(),
		MaxTerm:             r.MaxTerm(),
		MinDownPaymentPct:   r.MinDownPaymentPct(),
	}
	for _, c := range r.Criteria() {
		resp.Criteria = append(resp.Criteria, dto.CriterionScoreResponse{
			Name:       c.Name,
			Points:     c.Points,
			MaxWeight:  c.MaxWeight,
			Descriptor: c.Descriptor,
		})
	}
	return resp
}
