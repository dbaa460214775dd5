package dto

type UpsertPolicyRequest struct {
	HoursBeforeClass int  `json:"hours_before_class" validate:"required,min=1,max=720"`
	ChargePercentage int  `json:"charge_percentage" validate:"min=0,max=100"`
	AllowAmnesty     bool `json:"allow_amnesty"`
}
