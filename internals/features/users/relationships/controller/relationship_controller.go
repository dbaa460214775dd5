package controller

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tutorflow_backend/internals/constants"
	profileModel "tutorflow_backend/internals/features/users/profiles/model"
	"tutorflow_backend/internals/features/users/relationships/dto"
	"tutorflow_backend/internals/features/users/relationships/model"
	helper "tutorflow_backend/internals/helpers"
)

type RelationshipController struct {
	DB *gorm.DB
}

func NewRelationshipController(db *gorm.DB) *RelationshipController {
	return &RelationshipController{DB: db}
}

var validate = validator.New()

// GET /api/t/students
// Lista os alunos com vínculo ativo com o professor.
func (ctrl *RelationshipController) ListStudents(c *fiber.Ctx) error {
	teacherID, err := helper.GetTeacherIDFromToken(c)
	if err != nil {
		return err
	}

	var students []profileModel.ProfileModel
	err = ctrl.DB.
		Joins("JOIN teacher_student_relationships r ON r.relationship_student_id = profiles.profile_id").
		Where("r.relationship_teacher_id = ? AND r.relationship_status = ?", teacherID, model.RelationshipStatusActive).
		Order("profiles.profile_full_name ASC").
		Find(&students).Error
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Falha ao listar alunos")
	}

	return helper.JsonList(c, "OK", students, nil)
}

// POST /api/t/students
// Vincula um aluno existente (por e-mail) ao professor. Reativa vínculos
// inativos em vez de duplicar.
func (ctrl *RelationshipController) LinkStudent(c *fiber.Ctx) error {
	teacherID, err := helper.GetTeacherIDFromToken(c)
	if err != nil {
		return err
	}

	var input dto.CreateRelationshipRequest
	if err := c.BodyParser(&input); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Formato de requisição inválido")
	}
	if err := validate.Struct(input); err != nil {
		return helper.JsonValidationError(c, err)
	}

	var student profileModel.ProfileModel
	err = ctrl.DB.
		Where("profile_email = ? AND profile_role = ?", strings.ToLower(strings.TrimSpace(input.StudentEmail)), constants.RoleStudent).
		First(&student).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Aluno não encontrado")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Falha ao buscar aluno")
	}

	rel := model.RelationshipModel{
		RelationshipTeacherID: teacherID,
		RelationshipStudentID: student.ProfileID,
		RelationshipStatus:    model.RelationshipStatusActive,
	}
	err = ctrl.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "relationship_teacher_id"},
			{Name: "relationship_student_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"relationship_status", "relationship_updated_at"}),
	}).Create(&rel).Error
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Falha ao vincular aluno")
	}

	return helper.JsonCreated(c, "Aluno vinculado com sucesso", rel)
}

// DELETE /api/t/students/:id
// Desativa o vínculo (soft): histórico de aulas e faturas permanece.
func (ctrl *RelationshipController) UnlinkStudent(c *fiber.Ctx) error {
	teacherID, err := helper.GetTeacherIDFromToken(c)
	if err != nil {
		return err
	}

	studentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID de aluno inválido")
	}

	res := ctrl.DB.Model(&model.RelationshipModel{}).
		Where("relationship_teacher_id = ? AND relationship_student_id = ? AND relationship_status = ?",
			teacherID, studentID, model.RelationshipStatusActive).
		Update("relationship_status", model.RelationshipStatusInactive)
	if res.Error != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Falha ao desvincular aluno")
	}
	if res.RowsAffected == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "Vínculo ativo não encontrado")
	}

	return helper.JsonDeleted(c, "Aluno desvinculado com sucesso", nil)
}
