package usecase

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/xet-labs/xet-composer/internal/domain"
)

// scheduleBasis is the nominal total used for previews, in basis points,
// so rows read as fractions of whatever the wallet will eventually hold.
var scheduleBasis = big.NewInt(10_000)

// PreviewSchedule validates vesting parameters and projects the schedule
// the deployed contract would follow, without touching the compiler or the
// network.
type PreviewSchedule struct {
	templates TemplateRepository
	validator ParameterValidator
}

// NewPreviewSchedule creates the use case.
func NewPreviewSchedule(templates TemplateRepository, validator ParameterValidator) *PreviewSchedule {
	return &PreviewSchedule{templates: templates, validator: validator}
}

// SchedulePoint is one projected row of the vesting schedule.
type SchedulePoint struct {
	Label     string
	Time      time.Time
	VestedBps uint64
}

// PreviewResult is the projected schedule for a validated parameter set.
type PreviewResult struct {
	Template *domain.TemplateDescriptor
	Schedule domain.VestingSchedule
	Points   []SchedulePoint
}

// Run validates the raw parameters against the template and projects the
// schedule at the cliff and at each quarter of the vesting period.
func (uc *PreviewSchedule) Run(ctx context.Context, templateID string, raw map[string]string) (*PreviewResult, error) {
	descriptor, err := uc.templates.Get(ctx, templateID)
	if err != nil {
		return nil, err
	}
	set, err := uc.validator.Validate(ctx, descriptor, raw)
	if err != nil {
		return nil, err
	}

	schedule, err := scheduleFromSet(descriptor, set)
	if err != nil {
		return nil, err
	}

	result := &PreviewResult{Template: descriptor, Schedule: schedule}
	add := func(label string, t uint64) {
		vested := schedule.Vested(scheduleBasis, t)
		result.Points = append(result.Points, SchedulePoint{
			Label:     label,
			Time:      time.Unix(int64(t), 0).UTC(),
			VestedBps: vested.Uint64(),
		})
	}

	add("start", schedule.Start)
	add("cliff", schedule.Start+schedule.Cliff)
	for q := uint64(1); q <= 3; q++ {
		add(fmt.Sprintf("%d%%", q*25), schedule.Start+q*schedule.Duration/4)
	}
	add("end", schedule.Start+schedule.Duration)
	return result, nil
}

// scheduleFromSet extracts the vesting schedule fields from a validated
// set. Templates without the schedule parameters cannot be previewed.
func scheduleFromSet(d *domain.TemplateDescriptor, set *domain.ParameterSet) (domain.VestingSchedule, error) {
	field := func(name string) (uint64, error) {
		v, ok := set.Get(name)
		if !ok || v.Uint == nil {
			return 0, fmt.Errorf("template %s declares no %q parameter: nothing to preview", d.ID, name)
		}
		return v.Uint.Uint64(), nil
	}

	start, err := field("start_time")
	if err != nil {
		return domain.VestingSchedule{}, err
	}
	cliff, err := field("cliff_duration")
	if err != nil {
		return domain.VestingSchedule{}, err
	}
	duration, err := field("duration")
	if err != nil {
		return domain.VestingSchedule{}, err
	}
	return domain.VestingSchedule{Start: start, Cliff: cliff, Duration: duration}, nil
}
