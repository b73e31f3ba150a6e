// Package mocks provides testify mocks of the service interfaces consumed by
// the HTTP layer, shared by handler and router tests.
//
//	practice := &mocks.MockPracticeService{}
//	practice.On("SubmitAnswer", mock.Anything, learnerID, req).Return(outcome, nil)
//
// Store mocks live next to the services that use them.
package mocks
