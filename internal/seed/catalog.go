// Package seed holds the static catalog and demo records loaded into a fresh store.
package seed

import (
	"github.com/lib/pq"

	"github.com/noah-isme/discipulus-api/internal/models"
)

const pexels = "?auto=compress&cs=tinysrgb&w=400"

// Teachers returns the catalog table in listing order.
func Teachers() []models.Teacher {
	return []models.Teacher{
		{
			ID:           "1",
			Name:         "Sarah Johnson",
			Avatar:       "https://images.pexels.com/photos/774909/pexels-photo-774909.jpeg" + pexels,
			Subjects:     pq.StringArray{"Matemática", "Física"},
			Rating:       4.9,
			ReviewCount:  127,
			HourlyRate:   45,
			Experience:   "8 anos",
			Bio:          "Professora apaixonada por matemática e física com doutorado em Matemática Aplicada. Especializo-me em tornar conceitos complexos acessíveis e envolventes para estudantes de todos os níveis.",
			Languages:    pq.StringArray{"Português", "Inglês"},
			Availability: pq.StringArray{"Segunda", "Terça", "Quarta", "Sexta"},
			Verified:     true,
		},
		{
			ID:           "2",
			Name:         "Michael Chen",
			Avatar:       "https://images.pexels.com/photos/1222271/pexels-photo-1222271.jpeg" + pexels,
			Subjects:     pq.StringArray{"Ciência da Computação", "Programação"},
			Rating:       4.8,
			ReviewCount:  89,
			HourlyRate:   55,
			Experience:   "6 anos",
			Bio:          "Engenheiro de software sênior que se tornou educador. Ensino fundamentos de programação, desenvolvimento web e conceitos de ciência da computação com aplicações do mundo real.",
			Languages:    pq.StringArray{"Português", "Inglês", "Mandarim"},
			Availability: pq.StringArray{"Terça", "Quinta", "Sábado", "Domingo"},
			Verified:     true,
		},
		{
			ID:           "3",
			Name:         "Emily Rodriguez",
			Avatar:       "https://images.pexels.com/photos/1239291/pexels-photo-1239291.jpeg" + pexels,
			Subjects:     pq.StringArray{"Literatura", "Redação"},
			Rating:       4.9,
			ReviewCount:  156,
			HourlyRate:   40,
			Experience:   "10 anos",
			Bio:          "Ex-professora universitária com expertise em literatura e escrita criativa. Ajudo estudantes a desenvolver pensamento crítico e habilidades de escrita.",
			Languages:    pq.StringArray{"Português", "Espanhol", "Francês"},
			Availability: pq.StringArray{"Segunda", "Quarta", "Quinta", "Sexta"},
			Verified:     true,
		},
		{
			ID:           "4",
			Name:         "David Kim",
			Avatar:       "https://images.pexels.com/photos/1681010/pexels-photo-1681010.jpeg" + pexels,
			Subjects:     pq.StringArray{"Química", "Biologia"},
			Rating:       4.7,
			ReviewCount:  73,
			HourlyRate:   42,
			Experience:   "5 anos",
			Bio:          "Estudante de medicina com forte formação em química e biologia. Foco em ajudar estudantes a entender conceitos científicos através de exemplos práticos.",
			Languages:    pq.StringArray{"Português", "Inglês", "Coreano"},
			Availability: pq.StringArray{"Segunda", "Terça", "Sábado", "Domingo"},
			Verified:     true,
		},
		{
			ID:           "5",
			Name:         "Anna Petrov",
			Avatar:       "https://images.pexels.com/photos/1181686/pexels-photo-1181686.jpeg" + pexels,
			Subjects:     pq.StringArray{"História", "Geografia"},
			Rating:       4.8,
			ReviewCount:  94,
			HourlyRate:   38,
			Experience:   "7 anos",
			Bio:          "Entusiasta da história com mestrado em História Europeia. Faço eventos históricos ganharem vida através de narrativas e aprendizado interativo.",
			Languages:    pq.StringArray{"Português", "Inglês", "Russo", "Alemão"},
			Availability: pq.StringArray{"Quarta", "Quinta", "Sexta", "Sábado"},
			Verified:     true,
		},
		{
			ID:           "6",
			Name:         "James Wilson",
			Avatar:       "https://images.pexels.com/photos/1043471/pexels-photo-1043471.jpeg" + pexels,
			Subjects:     pq.StringArray{"Economia", "Administração"},
			Rating:       4.6,
			ReviewCount:  61,
			HourlyRate:   48,
			Experience:   "9 anos",
			Bio:          "Consultor empresarial e professor de economia. Ajudo estudantes a entender princípios econômicos e suas aplicações no mundo real dos negócios.",
			Languages:    pq.StringArray{"Português", "Inglês"},
			Availability: pq.StringArray{"Segunda", "Terça", "Quinta", "Sexta"},
			Verified:     true,
		},
	}
}

// Profiles returns the dashboard fields of every catalog teacher.
func Profiles() []models.TeacherProfile {
	teachers := Teachers()
	profiles := make([]models.TeacherProfile, 0, len(teachers))
	for _, t := range teachers {
		profile := models.TeacherProfile{Teacher: t, Certifications: pq.StringArray{}}
		if t.ID == DemoTeacherID {
			profile.Email = DemoTeacherEmail
			profile.Education = "Doutorado em Matemática Aplicada - USP"
			profile.Certifications = pq.StringArray{"Certificação em Ensino Online", "Especialização em Didática"}
			profile.Phone = "+55 11 99999-9999"
			profile.Location = "São Paulo, SP"
		}
		profiles = append(profiles, profile)
	}
	return profiles
}

// Subjects returns the subject table in display order.
func Subjects() []models.Subject {
	return []models.Subject{
		{ID: "1", Name: "Matemática", Category: models.CategoryExact, Icon: "Calculator"},
		{ID: "2", Name: "Física", Category: models.CategoryExact, Icon: "Atom"},
		{ID: "3", Name: "Química", Category: models.CategoryExact, Icon: "TestTube"},
		{ID: "4", Name: "Biologia", Category: models.CategoryExact, Icon: "Microscope"},
		{ID: "5", Name: "Ciência da Computação", Category: models.CategoryExact, Icon: "Monitor"},
		{ID: "6", Name: "Programação", Category: models.CategoryExact, Icon: "Code"},
		{ID: "7", Name: "Literatura", Category: models.CategoryHumanity, Icon: "BookOpen"},
		{ID: "8", Name: "Redação", Category: models.CategoryHumanity, Icon: "PenTool"},
		{ID: "9", Name: "História", Category: models.CategoryHumanity, Icon: "Clock"},
		{ID: "10", Name: "Geografia", Category: models.CategoryHumanity, Icon: "Globe"},
		{ID: "11", Name: "Economia", Category: models.CategoryBusiness, Icon: "TrendingUp"},
		{ID: "12", Name: "Administração", Category: models.CategoryBusiness, Icon: "Briefcase"},
	}
}
