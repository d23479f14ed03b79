package mapper

import (
	"github.com/coursedesk/ms-go-checkout/app/entity"
	"github.com/coursedesk/ms-go-checkout/app/types"
)

func CourseToSummary(item *entity.Course) *types.CourseSummary {
	if item == nil {
		return nil
	}

	return &types.CourseSummary{
		Id:          item.ID,
		Title:       item.Title,
		Price:       item.Price,
		Image:       item.Image,
		Description: item.Description,
	}
}
