package http

import (
	"net/http"

	"financetracker/internal/log"
	"financetracker/internal/services"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		writeError(w, r, log.OpRegister, err)
		return
	}

	form := services.RegistrationForm{
		Username:  p.Get("username"),
		FirstName: p.Get("first_name"),
		LastName:  p.Get("last_name"),
		Email:     p.Get("email"),
		Password1: p.Raw("password1"),
		Password2: p.Raw("password2"),
	}
	session, err := s.deps.Accounts.Register(r.Context(), form)
	if err != nil {
		writeError(w, r, log.OpRegister, err)
		return
	}

	s.logger.InfoContext(r.Context(), "User registered via HTTP",
		log.FieldUserID, session.User.ID,
		log.FieldOperation, log.OpRegister)
	NewJSONResponse().Status(http.StatusCreated).Body(newSessionView(session)).Write(w)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		writeError(w, r, log.OpLogin, err)
		return
	}

	username, password := p.Get("username"), p.Raw("password")
	if username == "" {
		writeError(w, r, log.OpLogin, requiredField("username"))
		return
	}
	if password == "" {
		writeError(w, r, log.OpLogin, requiredField("password"))
		return
	}

	session, err := s.deps.Accounts.Login(r.Context(), username, password)
	if err != nil {
		writeError(w, r, log.OpLogin, err)
		return
	}
	NewJSONResponse().Body(newSessionView(session)).Write(w)
}
